package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrInvalidLinkStatusTransition = errors.New("core: invalid link status transition")
	ErrConnectionNotFound          = errors.New("core: connection not found")
	ErrSessionNotFound             = errors.New("core: session not found")
)

type User struct {
	ID          string
	DisplayName string
	Email       string
	CreatedAt   time.Time
}

// Session is the local proof of authentication. The token is opaque,
// owned exclusively by the session service, and replaced wholesale on
// every successful login or registration.
type Session struct {
	UserID      string
	DisplayName string
	Email       string
	Token       string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

func (s Session) IsZero() bool {
	return strings.TrimSpace(s.Token) == "" && strings.TrimSpace(s.UserID) == ""
}

func (s Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

func (s Session) User() User {
	return User{
		ID:          s.UserID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
		CreatedAt:   s.IssuedAt,
	}
}

type LinkStatus string

const (
	LinkStatusDisconnected         LinkStatus = "disconnected"
	LinkStatusCodeRequested        LinkStatus = "code_requested"
	LinkStatusAwaitingSecondFactor LinkStatus = "awaiting_second_factor"
	LinkStatusConnected            LinkStatus = "connected"
)

// Connection is the local record of an account link to the external
// messaging identity. At most one connection exists per user; an absent
// record is equivalent to LinkStatusDisconnected.
type Connection struct {
	ID              string
	UserID          string
	ExternalHandle  string
	Status          LinkStatus
	LastError       string
	CodeRequestedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Connection) TransitionTo(status LinkStatus, reason string, now time.Time) error {
	if c == nil {
		return nil
	}
	if c.Status == status {
		c.UpdatedAt = now
		if strings.TrimSpace(reason) != "" {
			c.LastError = strings.TrimSpace(reason)
		}
		return nil
	}
	if !linkTransitionAllowed(c.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidLinkStatusTransition, c.Status, status)
	}
	c.Status = status
	c.UpdatedAt = now
	if strings.TrimSpace(reason) != "" {
		c.LastError = strings.TrimSpace(reason)
	}
	if status == LinkStatusConnected {
		c.LastError = ""
	}
	return nil
}

// CodeExpired reports whether an outstanding verification code has
// outlived ttl. Records that never requested a code are never stale.
func (c *Connection) CodeExpired(ttl time.Duration, now time.Time) bool {
	if c == nil || ttl <= 0 {
		return false
	}
	if c.Status != LinkStatusCodeRequested && c.Status != LinkStatusAwaitingSecondFactor {
		return false
	}
	if c.CodeRequestedAt.IsZero() {
		return false
	}
	return now.Sub(c.CodeRequestedAt) > ttl
}

func linkTransitionAllowed(current, next LinkStatus) bool {
	allowed := map[LinkStatus]map[LinkStatus]struct{}{
		LinkStatusDisconnected: {
			LinkStatusCodeRequested: {},
		},
		LinkStatusCodeRequested: {
			LinkStatusConnected:            {},
			LinkStatusAwaitingSecondFactor: {},
			LinkStatusDisconnected:         {},
		},
		LinkStatusAwaitingSecondFactor: {
			LinkStatusConnected:    {},
			LinkStatusDisconnected: {},
		},
		LinkStatusConnected: {
			LinkStatusDisconnected: {},
		},
	}
	_, ok := allowed[current][next]
	return ok
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return parsed.Address == email
}
