package command

import (
	"fmt"
	"strings"
)

const (
	TypeLogin               = "tezsocial.command.session.login"
	TypeRegister            = "tezsocial.command.session.register"
	TypeLogout              = "tezsocial.command.session.logout"
	TypeRequestCode         = "tezsocial.command.link.request_code"
	TypeConfirmCode         = "tezsocial.command.link.confirm_code"
	TypeConfirmSecondFactor = "tezsocial.command.link.confirm_second_factor"
	TypeDisconnect          = "tezsocial.command.link.disconnect"
	TypeExpireCodes         = "tezsocial.command.link.expire_codes"
)

type LoginMessage struct {
	Email    string
	Password string
}

func (LoginMessage) Type() string { return TypeLogin }

func (m LoginMessage) Validate() error {
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: email is required")
	}
	if m.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type RegisterMessage struct {
	Name     string
	Email    string
	Password string
}

func (RegisterMessage) Type() string { return TypeRegister }

func (m RegisterMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("command: name is required")
	}
	if strings.TrimSpace(m.Email) == "" {
		return fmt.Errorf("command: email is required")
	}
	if m.Password == "" {
		return fmt.Errorf("command: password is required")
	}
	return nil
}

type LogoutMessage struct{}

func (LogoutMessage) Type() string { return TypeLogout }

func (LogoutMessage) Validate() error { return nil }

type RequestCodeMessage struct {
	Handle string
}

func (RequestCodeMessage) Type() string { return TypeRequestCode }

func (m RequestCodeMessage) Validate() error {
	if strings.TrimSpace(m.Handle) == "" {
		return fmt.Errorf("command: handle is required")
	}
	return nil
}

type ConfirmCodeMessage struct {
	Code   string
	Handle string
}

func (ConfirmCodeMessage) Type() string { return TypeConfirmCode }

func (m ConfirmCodeMessage) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return fmt.Errorf("command: verification code is required")
	}
	return nil
}

type ConfirmSecondFactorMessage struct {
	Secret string
}

func (ConfirmSecondFactorMessage) Type() string { return TypeConfirmSecondFactor }

func (m ConfirmSecondFactorMessage) Validate() error {
	if m.Secret == "" {
		return fmt.Errorf("command: second factor secret is required")
	}
	return nil
}

type DisconnectMessage struct{}

func (DisconnectMessage) Type() string { return TypeDisconnect }

func (DisconnectMessage) Validate() error { return nil }

type ExpireCodesMessage struct{}

func (ExpireCodesMessage) Type() string { return TypeExpireCodes }

func (ExpireCodesMessage) Validate() error { return nil }
