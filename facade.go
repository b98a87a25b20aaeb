package tezsocial

import (
	"fmt"

	authcommand "github.com/sreenjoy/tez-social-sub001/command"
	"github.com/sreenjoy/tez-social-sub001/core"
	authquery "github.com/sreenjoy/tez-social-sub001/query"
)

type CommandQueryService interface {
	authcommand.MutatingService
	authquery.SessionReader
	authquery.LinkReader
}

type Commands struct {
	Login               *authcommand.LoginCommand
	Register            *authcommand.RegisterCommand
	Logout              *authcommand.LogoutCommand
	RequestCode         *authcommand.RequestCodeCommand
	ConfirmCode         *authcommand.ConfirmCodeCommand
	ConfirmSecondFactor *authcommand.ConfirmSecondFactorCommand
	Disconnect          *authcommand.DisconnectCommand
	ExpireCodes         *authcommand.ExpireCodesCommand
}

type Queries struct {
	CheckAuth      *authquery.CheckAuthQuery
	CurrentSession *authquery.CurrentSessionQuery
	GetConnection  *authquery.GetConnectionQuery
	CurrentLink    *authquery.CurrentLinkQuery
	GuardAdmit     *authquery.GuardAdmitQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	guardReader authquery.GuardReader
}

func WithGuardReader(reader authquery.GuardReader) FacadeOption {
	return func(options *facadeOptions) {
		options.guardReader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("tezsocial: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.guardReader
	if reader == nil {
		reader = resolveGuardReader(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Login:               authcommand.NewLoginCommand(service),
		Register:            authcommand.NewRegisterCommand(service),
		Logout:              authcommand.NewLogoutCommand(service),
		RequestCode:         authcommand.NewRequestCodeCommand(service),
		ConfirmCode:         authcommand.NewConfirmCodeCommand(service),
		ConfirmSecondFactor: authcommand.NewConfirmSecondFactorCommand(service),
		Disconnect:          authcommand.NewDisconnectCommand(service),
		ExpireCodes:         authcommand.NewExpireCodesCommand(service),
	}
	facade.queries = Queries{
		CheckAuth:      authquery.NewCheckAuthQuery(service),
		CurrentSession: authquery.NewCurrentSessionQuery(service),
		GetConnection:  authquery.NewGetConnectionQuery(service),
		CurrentLink:    authquery.NewCurrentLinkQuery(service),
		GuardAdmit:     authquery.NewGuardAdmitQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// resolveGuardReader prefers a guard published by the service itself and
// falls back to a default guard driven by the service's session state.
func resolveGuardReader(service CommandQueryService) authquery.GuardReader {
	if service == nil {
		return nil
	}
	if reader, ok := service.(authquery.GuardReader); ok {
		return reader
	}
	return defaultGuardReader{
		guard: core.NewRouteGuard(core.DefaultConfig().Guard, service),
	}
}

type defaultGuardReader struct {
	guard *core.RouteGuard
}

func (r defaultGuardReader) Guard() *core.RouteGuard {
	return r.guard
}
