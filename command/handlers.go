package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/sreenjoy/tez-social-sub001/core"
)

type MutatingService interface {
	Login(ctx context.Context, email string, password string) (core.Session, error)
	Register(ctx context.Context, name string, email string, password string) (core.Session, error)
	Logout(ctx context.Context)
	RequestCode(ctx context.Context, handle string) (*core.Connection, error)
	ConfirmCode(ctx context.Context, code string, handle string) (core.ConfirmResult, error)
	ConfirmSecondFactor(ctx context.Context, secret string) (core.ConfirmResult, error)
	Disconnect(ctx context.Context) error
	RunExpirySweep(ctx context.Context) (core.ExpirySweepResult, error)
}

type LoginCommand struct {
	service MutatingService
}

func NewLoginCommand(service MutatingService) *LoginCommand {
	return &LoginCommand{service: service}
}

func (c *LoginCommand) Execute(ctx context.Context, msg LoginMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	out, err := c.service.Login(ctx, msg.Email, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterCommand struct {
	service MutatingService
}

func NewRegisterCommand(service MutatingService) *RegisterCommand {
	return &RegisterCommand{service: service}
}

func (c *RegisterCommand) Execute(ctx context.Context, msg RegisterMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	out, err := c.service.Register(ctx, msg.Name, msg.Email, msg.Password)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type LogoutCommand struct {
	service MutatingService
}

func NewLogoutCommand(service MutatingService) *LogoutCommand {
	return &LogoutCommand{service: service}
}

func (c *LogoutCommand) Execute(ctx context.Context, _ LogoutMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	c.service.Logout(ctx)
	return nil
}

type RequestCodeCommand struct {
	service MutatingService
}

func NewRequestCodeCommand(service MutatingService) *RequestCodeCommand {
	return &RequestCodeCommand{service: service}
}

func (c *RequestCodeCommand) Execute(ctx context.Context, msg RequestCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	out, err := c.service.RequestCode(ctx, msg.Handle)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ConfirmCodeCommand struct {
	service MutatingService
}

func NewConfirmCodeCommand(service MutatingService) *ConfirmCodeCommand {
	return &ConfirmCodeCommand{service: service}
}

func (c *ConfirmCodeCommand) Execute(ctx context.Context, msg ConfirmCodeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	out, err := c.service.ConfirmCode(ctx, msg.Code, msg.Handle)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ConfirmSecondFactorCommand struct {
	service MutatingService
}

func NewConfirmSecondFactorCommand(service MutatingService) *ConfirmSecondFactorCommand {
	return &ConfirmSecondFactorCommand{service: service}
}

func (c *ConfirmSecondFactorCommand) Execute(ctx context.Context, msg ConfirmSecondFactorMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	out, err := c.service.ConfirmSecondFactor(ctx, msg.Secret)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DisconnectCommand struct {
	service MutatingService
}

func NewDisconnectCommand(service MutatingService) *DisconnectCommand {
	return &DisconnectCommand{service: service}
}

func (c *DisconnectCommand) Execute(ctx context.Context, _ DisconnectMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	return c.service.Disconnect(ctx)
}

type ExpireCodesCommand struct {
	service MutatingService
}

func NewExpireCodesCommand(service MutatingService) *ExpireCodesCommand {
	return &ExpireCodesCommand{service: service}
}

func (c *ExpireCodesCommand) Execute(ctx context.Context, _ ExpireCodesMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: link service is required")
	}
	out, err := c.service.RunExpirySweep(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
