package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ConfirmOutcome tags the three distinct results a code confirmation can
// produce. The second-factor branch is an expected, user-actionable
// outcome, not a failure, so it is modeled as a variant instead of an
// error path.
type ConfirmOutcome string

const (
	ConfirmOutcomeConnected            ConfirmOutcome = "connected"
	ConfirmOutcomeSecondFactorRequired ConfirmOutcome = "second_factor_required"
)

type ExternalIdentity struct {
	AccountID   string
	Handle      string
	DisplayName string
}

type ConfirmResult struct {
	Outcome  ConfirmOutcome
	Identity ExternalIdentity
}

// LinkClient wraps the third-party verification API. Implementations own
// their transport timeouts; the link service treats any returned error as
// a failure of the current transition only.
type LinkClient interface {
	SendCode(ctx context.Context, handle string) error
	ConfirmCode(ctx context.Context, handle string, code string) (ConfirmResult, error)
	ConfirmSecondFactor(ctx context.Context, handle string, secret string) (ConfirmResult, error)
	Disconnect(ctx context.Context, handle string) error
}

type VerifiedCredentials struct {
	UserID      string
	DisplayName string
	Email       string
	Token       string
}

// CredentialVerifier is the consumed credential capability. Hashing and
// token minting live behind this boundary.
type CredentialVerifier interface {
	Verify(ctx context.Context, email string, password string) (VerifiedCredentials, error)
	Create(ctx context.Context, name string, email string, password string) (VerifiedCredentials, error)
}

// SessionStore persists the single session slot. Get returns
// ErrSessionNotFound when no record exists; Put replaces the slot
// atomically so token and user identity become visible together.
type SessionStore interface {
	Put(ctx context.Context, session Session) error
	Get(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// ConnectionStore persists at most one connection per user. GetByUser
// returns ErrConnectionNotFound for users that never linked.
type ConnectionStore interface {
	GetByUser(ctx context.Context, userID string) (Connection, error)
	Upsert(ctx context.Context, conn Connection) (Connection, error)
	Delete(ctx context.Context, userID string) error
	ExpireStale(ctx context.Context, before time.Time, reason string) (int, error)
}

type StoreProvider interface {
	SessionStore() SessionStore
	ConnectionStore() ConnectionStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// SessionRevoker is consumed by any component that observes a remote
// authorization rejection. Clearing persisted state before the error
// propagates keeps the session store from lagging a remote revocation.
type SessionRevoker interface {
	RevokeSession(ctx context.Context) error
}

type SessionState struct {
	User            User
	IsAuthenticated bool
}

type LinkState struct {
	Connection *Connection
	Status     LinkStatus
	Err        error
}

type SessionSubscriber func(state SessionState)

type LinkSubscriber func(state LinkState)

type GuardDecision struct {
	Allow      bool
	RedirectTo string
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter executes one remote exchange. Adapters return errors
// only for transport-level failures; non-2xx responses come back as
// responses so callers can interpret provider status codes.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}
