package tezsocial

import "github.com/sreenjoy/tez-social-sub001/core"

type Config = core.Config

type SessionConfig = core.SessionConfig
type LinkConfig = core.LinkConfig
type GuardConfig = core.GuardConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type SessionStore = core.SessionStore
type ConnectionStore = core.ConnectionStore
type LinkClient = core.LinkClient
type CredentialVerifier = core.CredentialVerifier
type TransportAdapter = core.TransportAdapter

type Session = core.Session
type SessionState = core.SessionState
type Connection = core.Connection
type LinkState = core.LinkState
type LinkStatus = core.LinkStatus
type ConfirmResult = core.ConfirmResult
type GuardDecision = core.GuardDecision
type ExpirySweepResult = core.ExpirySweepResult

var (
	WithLogger             = core.WithLogger
	WithLoggerProvider     = core.WithLoggerProvider
	WithMetricsRecorder    = core.WithMetricsRecorder
	WithErrorFactory       = core.WithErrorFactory
	WithErrorMapper        = core.WithErrorMapper
	WithPersistenceClient  = core.WithPersistenceClient
	WithRepositoryFactory  = core.WithRepositoryFactory
	WithConfigProvider     = core.WithConfigProvider
	WithOptionsResolver    = core.WithOptionsResolver
	WithSessionStore       = core.WithSessionStore
	WithConnectionStore    = core.WithConnectionStore
	WithLinkClient         = core.WithLinkClient
	WithCredentialVerifier = core.WithCredentialVerifier
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
