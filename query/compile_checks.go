package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/sreenjoy/tez-social-sub001/core"
)

var (
	_ gocmd.Querier[CheckAuthMessage, bool]                   = (*CheckAuthQuery)(nil)
	_ gocmd.Querier[CurrentSessionMessage, core.SessionState] = (*CurrentSessionQuery)(nil)
	_ gocmd.Querier[GetConnectionMessage, *core.Connection]   = (*GetConnectionQuery)(nil)
	_ gocmd.Querier[CurrentLinkMessage, core.LinkState]       = (*CurrentLinkQuery)(nil)
	_ gocmd.Querier[GuardAdmitMessage, core.GuardDecision]    = (*GuardAdmitQuery)(nil)
)
