package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sreenjoy/tez-social-sub001/core"
	"github.com/uptrace/bun"
)

// SessionStore keeps a single session slot. Put replaces whatever row
// exists inside one transaction so the token and the user identity
// never become visible separately.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) (*SessionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) Put(ctx context.Context, session core.Session) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session store is not configured")
	}
	if session.IsZero() {
		return fmt.Errorf("sqlstore: session token and user id are required")
	}
	now := time.Now().UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*sessionRecord)(nil)).Where("1 = 1").Exec(ctx); err != nil {
			return err
		}
		record := newSessionRecord(session, now)
		record.ID = uuid.NewString()
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
}

func (s *SessionStore) Get(ctx context.Context) (core.Session, error) {
	if s == nil || s.db == nil {
		return core.Session{}, fmt.Errorf("sqlstore: session store is not configured")
	}
	record := &sessionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Order("issued_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, err
	}
	return record.toDomain(), nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session store is not configured")
	}
	_, err := s.db.NewDelete().Model((*sessionRecord)(nil)).Where("1 = 1").Exec(ctx)
	return err
}
