package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const codeExpiredReason = "verification code expired"

// GetConnection reads the persisted link state for the authenticated
// user. A user who never linked gets (nil, nil): absence of a record is
// the disconnected state, not an error.
func (s *Service) GetConnection(ctx context.Context) (*Connection, error) {
	if s == nil || s.connectionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: connection store is required"))
	}
	userID, err := s.currentUserID()
	if err != nil {
		return nil, s.mapError(authenticationFailed(err))
	}
	conn, err := s.connectionStore.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrConnectionNotFound) {
			s.setLinkState(nil, LinkStatusDisconnected, nil)
			return nil, nil
		}
		return nil, s.mapError(err)
	}
	s.setLinkState(&conn, conn.Status, nil)
	return &conn, nil
}

// RequestCode starts the handshake. Only valid while disconnected:
// re-requesting with a code already outstanding is rejected so no two
// codes are in flight for one account. The record is persisted only
// after the provider accepted the send.
func (s *Service) RequestCode(ctx context.Context, handle string) (conn *Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"handle": redactHandle(handle)}
	defer func() {
		s.observeOperation(ctx, startedAt, "request_code", err, fields)
	}()

	if err = s.requireLinkDependencies(); err != nil {
		return nil, err
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		err = s.mapError(goerrors.NewValidation("core: validation failed", goerrors.FieldError{
			Field:   "handle",
			Message: "handle is required",
		}).WithTextCode(AuthErrorValidationFailed))
		return nil, err
	}
	userID, authErr := s.currentUserID()
	if authErr != nil {
		err = s.mapError(authenticationFailed(authErr))
		return nil, err
	}

	existing, getErr := s.connectionStore.GetByUser(ctx, userID)
	if getErr != nil && !errors.Is(getErr, ErrConnectionNotFound) {
		err = s.mapError(getErr)
		return nil, err
	}
	if getErr == nil && existing.Status != LinkStatusDisconnected {
		err = s.mapError(invalidTransition(existing.Status, LinkStatusCodeRequested))
		return nil, err
	}

	if sendErr := s.linkClient.SendCode(ctx, handle); sendErr != nil {
		err = s.mapError(verificationFailed(sendErr))
		return nil, err
	}

	now := time.Now().UTC()
	record := existing
	if getErr != nil {
		record = Connection{
			ID:        uuid.NewString(),
			UserID:    userID,
			Status:    LinkStatusDisconnected,
			CreatedAt: now,
		}
	}
	record.ExternalHandle = handle
	record.CodeRequestedAt = now
	if transitionErr := record.TransitionTo(LinkStatusCodeRequested, "", now); transitionErr != nil {
		err = s.mapError(transitionErr)
		return nil, err
	}

	saved, saveErr := s.connectionStore.Upsert(ctx, record)
	if saveErr != nil {
		err = s.mapError(saveErr)
		return nil, err
	}
	s.setLinkState(&saved, saved.Status, nil)
	return &saved, nil
}

// ConfirmCode submits the verification code. Three outcomes are
// distinguished: connected, second factor required (a status, not an
// error), and verification failure, which leaves the state untouched so
// the caller can retry or re-issue the code.
func (s *Service) ConfirmCode(ctx context.Context, code string, handle string) (result ConfirmResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"handle": redactHandle(handle)}
	defer func() {
		s.observeOperation(ctx, startedAt, "confirm_code", err, fields)
	}()

	if err = s.requireLinkDependencies(); err != nil {
		return ConfirmResult{}, err
	}
	if strings.TrimSpace(code) == "" {
		err = s.mapError(goerrors.NewValidation("core: validation failed", goerrors.FieldError{
			Field:   "code",
			Message: "code is required",
		}).WithTextCode(AuthErrorValidationFailed))
		return ConfirmResult{}, err
	}

	record, loadErr := s.loadConnectionFor(ctx, LinkStatusCodeRequested)
	if loadErr != nil {
		err = loadErr
		return ConfirmResult{}, err
	}

	now := time.Now().UTC()
	if record.CodeExpired(s.config.Link.CodeTTL, now) {
		if expireErr := s.expireConnection(ctx, record, now); expireErr != nil {
			err = expireErr
			return ConfirmResult{}, err
		}
		err = s.mapError(verificationFailed(errors.New(codeExpiredReason)))
		return ConfirmResult{}, err
	}

	confirmHandle := strings.TrimSpace(handle)
	if confirmHandle == "" {
		confirmHandle = record.ExternalHandle
	}
	remote, confirmErr := s.linkClient.ConfirmCode(ctx, confirmHandle, strings.TrimSpace(code))
	if confirmErr != nil {
		err = s.mapError(verificationFailed(confirmErr))
		return ConfirmResult{}, err
	}

	switch remote.Outcome {
	case ConfirmOutcomeSecondFactorRequired:
		if transitionErr := record.TransitionTo(LinkStatusAwaitingSecondFactor, "", now); transitionErr != nil {
			err = s.mapError(transitionErr)
			return ConfirmResult{}, err
		}
	case ConfirmOutcomeConnected:
		if transitionErr := record.TransitionTo(LinkStatusConnected, "", now); transitionErr != nil {
			err = s.mapError(transitionErr)
			return ConfirmResult{}, err
		}
	default:
		err = s.mapError(fmt.Errorf("core: unexpected confirm outcome %q", remote.Outcome))
		return ConfirmResult{}, err
	}

	saved, saveErr := s.connectionStore.Upsert(ctx, record)
	if saveErr != nil {
		err = s.mapError(saveErr)
		return ConfirmResult{}, err
	}
	s.setLinkState(&saved, saved.Status, nil)
	return remote, nil
}

// ConfirmSecondFactor submits the provider's additional secret. Failure
// keeps the awaiting state so the caller may retry; no retry limit is
// imposed here.
func (s *Service) ConfirmSecondFactor(ctx context.Context, secret string) (result ConfirmResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "confirm_second_factor", err, fields)
	}()

	if err = s.requireLinkDependencies(); err != nil {
		return ConfirmResult{}, err
	}
	if secret == "" {
		err = s.mapError(goerrors.NewValidation("core: validation failed", goerrors.FieldError{
			Field:   "secret",
			Message: "secret is required",
		}).WithTextCode(AuthErrorValidationFailed))
		return ConfirmResult{}, err
	}

	record, loadErr := s.loadConnectionFor(ctx, LinkStatusAwaitingSecondFactor)
	if loadErr != nil {
		err = loadErr
		return ConfirmResult{}, err
	}
	fields["handle"] = redactHandle(record.ExternalHandle)

	remote, confirmErr := s.linkClient.ConfirmSecondFactor(ctx, record.ExternalHandle, secret)
	if confirmErr != nil {
		err = s.mapError(secondFactorFailed(confirmErr))
		return ConfirmResult{}, err
	}
	if remote.Outcome != ConfirmOutcomeConnected {
		err = s.mapError(fmt.Errorf("core: unexpected confirm outcome %q", remote.Outcome))
		return ConfirmResult{}, err
	}

	now := time.Now().UTC()
	if transitionErr := record.TransitionTo(LinkStatusConnected, "", now); transitionErr != nil {
		err = s.mapError(transitionErr)
		return ConfirmResult{}, err
	}
	saved, saveErr := s.connectionStore.Upsert(ctx, record)
	if saveErr != nil {
		err = s.mapError(saveErr)
		return ConfirmResult{}, err
	}
	s.setLinkState(&saved, saved.Status, nil)
	return remote, nil
}

// Disconnect tears the link down from any state. Disconnecting an
// already-disconnected account is a no-op success. The remote revocation
// is best effort: the local record is always cleared so the user's
// intent wins over a flaky provider.
func (s *Service) Disconnect(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "disconnect", err, fields)
	}()

	if s == nil || s.connectionStore == nil {
		err = s.mapError(fmt.Errorf("core: connection store is required"))
		return err
	}
	userID, authErr := s.currentUserID()
	if authErr != nil {
		err = s.mapError(authenticationFailed(authErr))
		return err
	}

	record, getErr := s.connectionStore.GetByUser(ctx, userID)
	if getErr != nil {
		if errors.Is(getErr, ErrConnectionNotFound) {
			s.setLinkState(nil, LinkStatusDisconnected, nil)
			return nil
		}
		err = s.mapError(getErr)
		return err
	}
	fields["handle"] = redactHandle(record.ExternalHandle)

	if s.linkClient != nil && record.Status != LinkStatusDisconnected {
		if remoteErr := s.linkClient.Disconnect(ctx, record.ExternalHandle); remoteErr != nil {
			s.logError(ctx, "disconnect: remote revocation failed", map[string]any{
				"error":  remoteErr.Error(),
				"handle": redactHandle(record.ExternalHandle),
			})
		}
	}

	if deleteErr := s.connectionStore.Delete(ctx, userID); deleteErr != nil {
		err = s.mapError(deleteErr)
		return err
	}
	s.setLinkState(nil, LinkStatusDisconnected, nil)
	return nil
}

// CurrentLink returns the reactive link view.
func (s *Service) CurrentLink() LinkState {
	if s == nil {
		return LinkState{Status: LinkStatusDisconnected}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linkState
}

func (s *Service) SubscribeLink(subscriber LinkSubscriber) {
	if s == nil || subscriber == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linkSubscribers = append(s.linkSubscribers, subscriber)
}

func (s *Service) requireLinkDependencies() error {
	if s == nil || s.connectionStore == nil {
		return s.mapError(fmt.Errorf("core: connection store is required"))
	}
	if s.linkClient == nil {
		return s.mapError(fmt.Errorf("core: link client is required"))
	}
	return nil
}

// loadConnectionFor enforces the state machine precondition before any
// remote call is made: an operation invalid for the current state never
// reaches the provider.
func (s *Service) loadConnectionFor(ctx context.Context, want LinkStatus) (Connection, error) {
	userID, authErr := s.currentUserID()
	if authErr != nil {
		return Connection{}, s.mapError(authenticationFailed(authErr))
	}
	record, getErr := s.connectionStore.GetByUser(ctx, userID)
	if getErr != nil {
		if errors.Is(getErr, ErrConnectionNotFound) {
			return Connection{}, s.mapError(invalidTransition(LinkStatusDisconnected, want))
		}
		return Connection{}, s.mapError(getErr)
	}
	if record.Status != want {
		return Connection{}, s.mapError(invalidTransition(record.Status, want))
	}
	return record, nil
}

func (s *Service) expireConnection(ctx context.Context, record Connection, now time.Time) error {
	if transitionErr := record.TransitionTo(LinkStatusDisconnected, codeExpiredReason, now); transitionErr != nil {
		return s.mapError(transitionErr)
	}
	saved, saveErr := s.connectionStore.Upsert(ctx, record)
	if saveErr != nil {
		return s.mapError(saveErr)
	}
	s.setLinkState(&saved, saved.Status, nil)
	return nil
}

func (s *Service) setLinkState(conn *Connection, status LinkStatus, stateErr error) {
	s.mu.Lock()
	var copied *Connection
	if conn != nil {
		clone := *conn
		copied = &clone
	}
	s.linkState = LinkState{Connection: copied, Status: status, Err: stateErr}
	subscribers := make([]LinkSubscriber, len(s.linkSubscribers))
	copy(subscribers, s.linkSubscribers)
	state := s.linkState
	s.mu.Unlock()
	for _, subscriber := range subscribers {
		subscriber(state)
	}
}

func invalidTransition(current, next LinkStatus) error {
	return goerrors.New(
		fmt.Sprintf("core: invalid link status transition: %s -> %s", current, next),
		goerrors.CategoryConflict,
	).WithTextCode(LinkErrorInvalidTransition)
}

func verificationFailed(cause error) error {
	if isTransportFailure(cause) {
		return cause
	}
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "core: code verification failed").
		WithTextCode(LinkErrorVerificationFailed)
}

func secondFactorFailed(cause error) error {
	if isTransportFailure(cause) {
		return cause
	}
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "core: second factor rejected").
		WithTextCode(LinkErrorSecondFactorFailed)
}

func redactHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if len(handle) <= 4 {
		return "***"
	}
	return handle[:3] + "***" + handle[len(handle)-2:]
}
