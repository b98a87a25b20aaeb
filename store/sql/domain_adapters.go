package sqlstore

import (
	"time"

	"github.com/sreenjoy/tez-social-sub001/core"
)

func newSessionRecord(session core.Session, now time.Time) *sessionRecord {
	return &sessionRecord{
		UserID:      session.UserID,
		DisplayName: session.DisplayName,
		Email:       session.Email,
		Token:       session.Token,
		IssuedAt:    session.IssuedAt,
		ExpiresAt:   session.ExpiresAt,
		CreatedAt:   now,
	}
}

func (r *sessionRecord) toDomain() core.Session {
	if r == nil {
		return core.Session{}
	}
	return core.Session{
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Token:       r.Token,
		IssuedAt:    r.IssuedAt,
		ExpiresAt:   r.ExpiresAt,
	}
}

func newConnectionRecord(conn core.Connection, now time.Time) *connectionRecord {
	record := &connectionRecord{
		ID:              conn.ID,
		UserID:          conn.UserID,
		ExternalHandle:  conn.ExternalHandle,
		Status:          string(conn.Status),
		LastError:       conn.LastError,
		CodeRequestedAt: conn.CodeRequestedAt,
		CreatedAt:       conn.CreatedAt,
		UpdatedAt:       conn.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	return record
}

func (r *connectionRecord) toDomain() core.Connection {
	if r == nil {
		return core.Connection{}
	}
	return core.Connection{
		ID:              r.ID,
		UserID:          r.UserID,
		ExternalHandle:  r.ExternalHandle,
		Status:          core.LinkStatus(r.Status),
		LastError:       r.LastError,
		CodeRequestedAt: r.CodeRequestedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
