package core

import (
	"context"
	"fmt"
	"time"
)

const JobIDExpireCodes = "tezsocial.link.expire_codes"

type ExpirySweepResult struct {
	Expired int
	Before  time.Time
}

// EnqueueExpirySweep schedules a verification-code expiry sweep on the
// job queue. The idempotency key collapses duplicate sweeps enqueued
// within the same minute.
func (s *Service) EnqueueExpirySweep(ctx context.Context, enqueuer JobEnqueuer) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if enqueuer == nil {
		return s.mapError(fmt.Errorf("core: job enqueuer is required"))
	}
	now := time.Now().UTC()
	return enqueuer.Enqueue(ctx, &JobExecutionMessage{
		JobID:          JobIDExpireCodes,
		IdempotencyKey: fmt.Sprintf("%s:%s", JobIDExpireCodes, now.Format("2006-01-02T15:04")),
		DedupPolicy:    "drop",
	})
}

// RunExpirySweep reverts handshakes whose verification code outlived the
// configured TTL back to disconnected. Safe to run concurrently with
// live traffic: the store mutates only stale code_requested and
// awaiting_second_factor rows.
func (s *Service) RunExpirySweep(ctx context.Context) (result ExpirySweepResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "expire_codes", err, fields)
	}()

	if s == nil || s.connectionStore == nil {
		err = s.mapError(fmt.Errorf("core: connection store is required"))
		return ExpirySweepResult{}, err
	}
	ttl := s.config.Link.CodeTTL
	if ttl <= 0 {
		return ExpirySweepResult{Before: startedAt}, nil
	}

	before := startedAt.Add(-ttl)
	expired, sweepErr := s.connectionStore.ExpireStale(ctx, before, codeExpiredReason)
	if sweepErr != nil {
		err = s.mapError(sweepErr)
		return ExpirySweepResult{}, err
	}
	fields["expired"] = expired
	return ExpirySweepResult{Expired: expired, Before: before}, nil
}
