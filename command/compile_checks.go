package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[LoginMessage]               = (*LoginCommand)(nil)
	_ gocmd.Commander[RegisterMessage]            = (*RegisterCommand)(nil)
	_ gocmd.Commander[LogoutMessage]              = (*LogoutCommand)(nil)
	_ gocmd.Commander[RequestCodeMessage]         = (*RequestCodeCommand)(nil)
	_ gocmd.Commander[ConfirmCodeMessage]         = (*ConfirmCodeCommand)(nil)
	_ gocmd.Commander[ConfirmSecondFactorMessage] = (*ConfirmSecondFactorCommand)(nil)
	_ gocmd.Commander[DisconnectMessage]          = (*DisconnectCommand)(nil)
	_ gocmd.Commander[ExpireCodesMessage]         = (*ExpireCodesCommand)(nil)
)
