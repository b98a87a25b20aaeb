package query

import (
	"fmt"
	"strings"
)

const (
	TypeCheckAuth      = "tezsocial.query.session.check_auth"
	TypeCurrentSession = "tezsocial.query.session.current"
	TypeGetConnection  = "tezsocial.query.link.get_connection"
	TypeCurrentLink    = "tezsocial.query.link.current"
	TypeGuardAdmit     = "tezsocial.query.guard.admit"
)

type CheckAuthMessage struct{}

func (CheckAuthMessage) Type() string { return TypeCheckAuth }

func (CheckAuthMessage) Validate() error { return nil }

type CurrentSessionMessage struct{}

func (CurrentSessionMessage) Type() string { return TypeCurrentSession }

func (CurrentSessionMessage) Validate() error { return nil }

type GetConnectionMessage struct{}

func (GetConnectionMessage) Type() string { return TypeGetConnection }

func (GetConnectionMessage) Validate() error { return nil }

type CurrentLinkMessage struct{}

func (CurrentLinkMessage) Type() string { return TypeCurrentLink }

func (CurrentLinkMessage) Validate() error { return nil }

type GuardAdmitMessage struct {
	Path string
}

func (GuardAdmitMessage) Type() string { return TypeGuardAdmit }

func (m GuardAdmitMessage) Validate() error {
	if strings.TrimSpace(m.Path) == "" {
		return fmt.Errorf("query: path is required")
	}
	return nil
}
