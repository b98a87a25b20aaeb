package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/sreenjoy/tez-social-sub001/core"
)

type stubMutatingService struct {
	loginFn               func(ctx context.Context, email string, password string) (core.Session, error)
	registerFn            func(ctx context.Context, name string, email string, password string) (core.Session, error)
	logoutFn              func(ctx context.Context)
	requestCodeFn         func(ctx context.Context, handle string) (*core.Connection, error)
	confirmCodeFn         func(ctx context.Context, code string, handle string) (core.ConfirmResult, error)
	confirmSecondFactorFn func(ctx context.Context, secret string) (core.ConfirmResult, error)
	disconnectFn          func(ctx context.Context) error
	runExpirySweepFn      func(ctx context.Context) (core.ExpirySweepResult, error)
}

func (s stubMutatingService) Login(ctx context.Context, email string, password string) (core.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s stubMutatingService) Register(ctx context.Context, name string, email string, password string) (core.Session, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s stubMutatingService) Logout(ctx context.Context) {
	if s.logoutFn != nil {
		s.logoutFn(ctx)
	}
}

func (s stubMutatingService) RequestCode(ctx context.Context, handle string) (*core.Connection, error) {
	return s.requestCodeFn(ctx, handle)
}

func (s stubMutatingService) ConfirmCode(ctx context.Context, code string, handle string) (core.ConfirmResult, error) {
	return s.confirmCodeFn(ctx, code, handle)
}

func (s stubMutatingService) ConfirmSecondFactor(ctx context.Context, secret string) (core.ConfirmResult, error) {
	return s.confirmSecondFactorFn(ctx, secret)
}

func (s stubMutatingService) Disconnect(ctx context.Context) error {
	return s.disconnectFn(ctx)
}

func (s stubMutatingService) RunExpirySweep(ctx context.Context) (core.ExpirySweepResult, error) {
	return s.runExpirySweepFn(ctx)
}

func TestLoginCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.Session{UserID: "user_1", Token: "token_1"}
	called := false

	svc := stubMutatingService{
		loginFn: func(_ context.Context, email string, password string) (core.Session, error) {
			called = true
			if email != "ada@example.com" || password != "secret" {
				t.Fatalf("unexpected credentials: %q", email)
			}
			return expected, nil
		},
	}

	cmd := NewLoginCommand(svc)
	collector := gocmd.NewResult[core.Session]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, LoginMessage{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("execute login: %v", err)
	}
	if !called {
		t.Fatalf("expected login service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Token != expected.Token {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestLoginCommand_ErrorSkipsResult(t *testing.T) {
	svc := stubMutatingService{
		loginFn: func(context.Context, string, string) (core.Session, error) {
			return core.Session{}, errors.New("invalid credentials")
		},
	}

	cmd := NewLoginCommand(svc)
	collector := gocmd.NewResult[core.Session]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, LoginMessage{Email: "ada@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("expected error propagated")
	}
	if _, ok := collector.Load(); ok {
		t.Fatalf("expected no result stored on failure")
	}
}

func TestRegisterCommand_ExecuteDelegates(t *testing.T) {
	svc := stubMutatingService{
		registerFn: func(_ context.Context, name string, email string, _ string) (core.Session, error) {
			if name != "Ada" || email != "ada@example.com" {
				t.Fatalf("unexpected register payload: %q %q", name, email)
			}
			return core.Session{UserID: "user_1", Token: "token_1"}, nil
		},
	}

	if err := NewRegisterCommand(svc).Execute(context.Background(), RegisterMessage{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("execute register: %v", err)
	}
}

func TestLogoutCommand_ExecuteDelegates(t *testing.T) {
	called := false
	svc := stubMutatingService{
		logoutFn: func(context.Context) { called = true },
	}
	if err := NewLogoutCommand(svc).Execute(context.Background(), LogoutMessage{}); err != nil {
		t.Fatalf("execute logout: %v", err)
	}
	if !called {
		t.Fatalf("expected logout invocation")
	}
}

func TestLinkCommands_DelegateToService(t *testing.T) {
	t.Run("request code", func(t *testing.T) {
		expected := &core.Connection{UserID: "user_1", Status: core.LinkStatusCodeRequested}
		svc := stubMutatingService{
			requestCodeFn: func(_ context.Context, handle string) (*core.Connection, error) {
				if handle != "+15551234567" {
					t.Fatalf("unexpected handle: %q", handle)
				}
				return expected, nil
			},
		}
		collector := gocmd.NewResult[*core.Connection]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewRequestCodeCommand(svc).Execute(ctx, RequestCodeMessage{Handle: "+15551234567"}); err != nil {
			t.Fatalf("execute request code: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.Status != core.LinkStatusCodeRequested {
			t.Fatalf("unexpected stored connection: %#v", stored)
		}
	})

	t.Run("confirm code", func(t *testing.T) {
		svc := stubMutatingService{
			confirmCodeFn: func(_ context.Context, code string, handle string) (core.ConfirmResult, error) {
				if code != "123456" || handle != "+15551234567" {
					t.Fatalf("unexpected confirm payload: %q %q", code, handle)
				}
				return core.ConfirmResult{Outcome: core.ConfirmOutcomeSecondFactorRequired}, nil
			},
		}
		collector := gocmd.NewResult[core.ConfirmResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewConfirmCodeCommand(svc).Execute(ctx, ConfirmCodeMessage{Code: "123456", Handle: "+15551234567"}); err != nil {
			t.Fatalf("execute confirm code: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.Outcome != core.ConfirmOutcomeSecondFactorRequired {
			t.Fatalf("unexpected stored result: %#v", stored)
		}
	})

	t.Run("confirm second factor", func(t *testing.T) {
		svc := stubMutatingService{
			confirmSecondFactorFn: func(_ context.Context, secret string) (core.ConfirmResult, error) {
				if secret != "hunter2" {
					t.Fatalf("unexpected secret")
				}
				return core.ConfirmResult{Outcome: core.ConfirmOutcomeConnected}, nil
			},
		}
		if err := NewConfirmSecondFactorCommand(svc).Execute(context.Background(), ConfirmSecondFactorMessage{Secret: "hunter2"}); err != nil {
			t.Fatalf("execute confirm second factor: %v", err)
		}
	})

	t.Run("disconnect", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			disconnectFn: func(context.Context) error {
				called = true
				return nil
			},
		}
		if err := NewDisconnectCommand(svc).Execute(context.Background(), DisconnectMessage{}); err != nil {
			t.Fatalf("execute disconnect: %v", err)
		}
		if !called {
			t.Fatalf("expected disconnect invocation")
		}
	})

	t.Run("expire codes", func(t *testing.T) {
		svc := stubMutatingService{
			runExpirySweepFn: func(context.Context) (core.ExpirySweepResult, error) {
				return core.ExpirySweepResult{Expired: 3}, nil
			},
		}
		collector := gocmd.NewResult[core.ExpirySweepResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewExpireCodesCommand(svc).Execute(ctx, ExpireCodesMessage{}); err != nil {
			t.Fatalf("execute expire codes: %v", err)
		}
		stored, ok := collector.Load()
		if !ok || stored.Expired != 3 {
			t.Fatalf("unexpected sweep result: %#v", stored)
		}
	})
}

func TestCommands_NilServiceIsDependencyError(t *testing.T) {
	if err := (&LoginCommand{}).Execute(context.Background(), LoginMessage{}); !core.HasTextCode(err, core.AuthErrorInternal) {
		t.Fatalf("expected dependency error, got: %v", err)
	}
	if err := (&DisconnectCommand{}).Execute(context.Background(), DisconnectMessage{}); !core.HasTextCode(err, core.AuthErrorInternal) {
		t.Fatalf("expected dependency error, got: %v", err)
	}
}

func TestMessages_Validate(t *testing.T) {
	if err := (LoginMessage{}).Validate(); err == nil {
		t.Fatalf("expected empty login message rejected")
	}
	if err := (LoginMessage{Email: "ada@example.com", Password: "secret"}).Validate(); err != nil {
		t.Fatalf("expected valid login message: %v", err)
	}
	if err := (RegisterMessage{Email: "ada@example.com", Password: "secret"}).Validate(); err == nil {
		t.Fatalf("expected missing name rejected")
	}
	if err := (RequestCodeMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing handle rejected")
	}
	if err := (ConfirmCodeMessage{Handle: "+15551234567"}).Validate(); err == nil {
		t.Fatalf("expected missing code rejected")
	}
	if err := (ConfirmSecondFactorMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing secret rejected")
	}
	if err := (LogoutMessage{}).Validate(); err != nil {
		t.Fatalf("logout message validates: %v", err)
	}
}
