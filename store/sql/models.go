package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type sessionRecord struct {
	bun.BaseModel `bun:"table:ts_sessions,alias:tss"`

	ID          string    `bun:"id,pk"`
	UserID      string    `bun:"user_id,notnull"`
	DisplayName string    `bun:"display_name"`
	Email       string    `bun:"email,notnull"`
	Token       string    `bun:"token,notnull"`
	IssuedAt    time.Time `bun:"issued_at,nullzero,notnull"`
	ExpiresAt   time.Time `bun:"expires_at,nullzero"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type connectionRecord struct {
	bun.BaseModel `bun:"table:ts_connections,alias:tsc"`

	ID              string    `bun:"id,pk"`
	UserID          string    `bun:"user_id,notnull,unique"`
	ExternalHandle  string    `bun:"external_handle,notnull"`
	Status          string    `bun:"status,notnull"`
	LastError       string    `bun:"last_error"`
	CodeRequestedAt time.Time `bun:"code_requested_at,nullzero"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
