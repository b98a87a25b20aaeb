package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/sreenjoy/tez-social-sub001/core"
	"github.com/uptrace/bun"
)

// ConnectionStore persists at most one link record per user, enforced
// by a unique index on user_id.
type ConnectionStore struct {
	db   *bun.DB
	repo repository.Repository[*connectionRecord]
}

func (s *ConnectionStore) GetByUser(ctx context.Context, userID string) (core.Connection, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: user id is required")
	}
	record, err := s.repo.Get(ctx, repository.SelectBy("user_id", "=", userID))
	if err != nil {
		if isNotFound(err) {
			return core.Connection{}, core.ErrConnectionNotFound
		}
		return core.Connection{}, err
	}
	return record.toDomain(), nil
}

func (s *ConnectionStore) Upsert(ctx context.Context, conn core.Connection) (core.Connection, error) {
	if s == nil || s.db == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: connection store is not configured")
	}
	conn.UserID = strings.TrimSpace(conn.UserID)
	if conn.UserID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: user id is required")
	}
	now := time.Now().UTC()

	var out core.Connection
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findConnectionTx(ctx, tx, conn.UserID)
		if err != nil {
			return err
		}
		if existing == nil {
			record := newConnectionRecord(conn, now)
			if strings.TrimSpace(record.ID) == "" {
				record.ID = uuid.NewString()
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				return insertErr
			}
			out = record.toDomain()
			return nil
		}

		existing.ExternalHandle = conn.ExternalHandle
		existing.Status = string(conn.Status)
		existing.LastError = conn.LastError
		existing.CodeRequestedAt = conn.CodeRequestedAt
		existing.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(existing).Where("id = ?", existing.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = existing.toDomain()
		return nil
	})
	if err != nil {
		return core.Connection{}, err
	}
	return out, nil
}

func (s *ConnectionStore) Delete(ctx context.Context, userID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: connection store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("sqlstore: user id is required")
	}
	_, err := s.db.NewDelete().
		Model((*connectionRecord)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

// ExpireStale reverts handshakes whose code request predates the cutoff
// back to disconnected in one bulk update. Connected rows are never
// touched.
func (s *ConnectionStore) ExpireStale(ctx context.Context, before time.Time, reason string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: connection store is not configured")
	}
	result, err := s.db.NewUpdate().
		Model((*connectionRecord)(nil)).
		Set("status = ?", string(core.LinkStatusDisconnected)).
		Set("last_error = ?", strings.TrimSpace(reason)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("status IN (?)", bun.In([]string{
			string(core.LinkStatusCodeRequested),
			string(core.LinkStatusAwaitingSecondFactor),
		})).
		Where("code_requested_at IS NOT NULL").
		Where("code_requested_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// StaleUsers lists the users whose outstanding handshake predates the
// cutoff. Callers that cache per-user reads use it to invalidate before
// ExpireStale rewrites the rows.
func (s *ConnectionStore) StaleUsers(ctx context.Context, before time.Time) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: connection store is not configured")
	}
	var userIDs []string
	err := s.db.NewSelect().
		Model((*connectionRecord)(nil)).
		Column("user_id").
		Where("status IN (?)", bun.In([]string{
			string(core.LinkStatusCodeRequested),
			string(core.LinkStatusAwaitingSecondFactor),
		})).
		Where("code_requested_at IS NOT NULL").
		Where("code_requested_at < ?", before).
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func findConnectionTx(ctx context.Context, tx bun.Tx, userID string) (*connectionRecord, error) {
	record := &connectionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if err == sql.ErrNoRows {
		return true
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "no rows in result set") ||
		strings.Contains(message, "not found")
}
