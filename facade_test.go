package tezsocial

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	authcommand "github.com/sreenjoy/tez-social-sub001/command"
	"github.com/sreenjoy/tez-social-sub001/core"
	authquery "github.com/sreenjoy/tez-social-sub001/query"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.Login == nil || commands.RequestCode == nil || commands.ExpireCodes == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.CheckAuth == nil || queries.CurrentLink == nil || queries.GuardAdmit == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.ConfirmResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().ConfirmCode.Execute(ctx, authcommand.ConfirmCodeMessage{
		Code:   "12345",
		Handle: "+15550100",
	}); err != nil {
		t.Fatalf("execute confirm code command: %v", err)
	}
	if svc.lastCode != "12345" || svc.lastHandle != "+15550100" {
		t.Fatalf("unexpected confirm code delegation payload: %q %q", svc.lastCode, svc.lastHandle)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected confirm code result to be stored")
	}
	if result.Outcome != core.ConfirmOutcomeConnected {
		t.Fatalf("unexpected confirm code result: %#v", result)
	}

	link, err := facade.Queries().CurrentLink.Query(context.Background(), authquery.CurrentLinkMessage{})
	if err != nil {
		t.Fatalf("query current link: %v", err)
	}
	if link.Status != core.LinkStatusConnected {
		t.Fatalf("unexpected link state: %#v", link)
	}
}

func TestFacade_GuardAdmitFallsBackToDefaultGuard(t *testing.T) {
	svc := &stubFacadeService{authenticated: false}

	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	decision, err := facade.Queries().GuardAdmit.Query(context.Background(), authquery.GuardAdmitMessage{Path: "/dashboard"})
	if err != nil {
		t.Fatalf("query guard admit: %v", err)
	}
	if decision.Allow {
		t.Fatalf("expected unauthenticated dashboard request to be redirected")
	}
	if decision.RedirectTo != "/login" {
		t.Fatalf("unexpected redirect target: %q", decision.RedirectTo)
	}
}

func TestFacade_GuardAdmitUsesProvidedReader(t *testing.T) {
	svc := &stubFacadeService{authenticated: true}
	reader := &stubGuardReader{
		guard: core.NewRouteGuard(core.GuardConfig{
			PublicPaths: []string{"/healthz"},
			LoginPath:   "/signin",
			HomePath:    "/app",
		}, svc),
	}

	facade, err := NewFacade(svc, WithGuardReader(reader))
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	decision, err := facade.Queries().GuardAdmit.Query(context.Background(), authquery.GuardAdmitMessage{Path: "/healthz"})
	if err != nil {
		t.Fatalf("query guard admit: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected public path to be admitted: %#v", decision)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	authenticated bool
	lastCode      string
	lastHandle    string
}

func (s *stubFacadeService) Login(context.Context, string, string) (core.Session, error) {
	return core.Session{UserID: "user_1", Token: "token_1"}, nil
}

func (s *stubFacadeService) Register(context.Context, string, string, string) (core.Session, error) {
	return core.Session{UserID: "user_1", Token: "token_1"}, nil
}

func (s *stubFacadeService) Logout(context.Context) {}

func (s *stubFacadeService) RequestCode(context.Context, string) (*core.Connection, error) {
	return &core.Connection{UserID: "user_1", Status: core.LinkStatusCodeRequested}, nil
}

func (s *stubFacadeService) ConfirmCode(_ context.Context, code string, handle string) (core.ConfirmResult, error) {
	s.lastCode = code
	s.lastHandle = handle
	return core.ConfirmResult{Outcome: core.ConfirmOutcomeConnected}, nil
}

func (s *stubFacadeService) ConfirmSecondFactor(context.Context, string) (core.ConfirmResult, error) {
	return core.ConfirmResult{Outcome: core.ConfirmOutcomeConnected}, nil
}

func (s *stubFacadeService) Disconnect(context.Context) error {
	return nil
}

func (s *stubFacadeService) RunExpirySweep(context.Context) (core.ExpirySweepResult, error) {
	return core.ExpirySweepResult{Expired: 1}, nil
}

func (s *stubFacadeService) CheckAuth(context.Context) bool {
	return s.authenticated
}

func (s *stubFacadeService) Current() core.SessionState {
	return core.SessionState{IsAuthenticated: s.authenticated}
}

func (s *stubFacadeService) GetConnection(context.Context) (*core.Connection, error) {
	return &core.Connection{UserID: "user_1", Status: core.LinkStatusConnected}, nil
}

func (s *stubFacadeService) CurrentLink() core.LinkState {
	return core.LinkState{Status: core.LinkStatusConnected}
}

type stubGuardReader struct {
	guard *core.RouteGuard
}

func (r *stubGuardReader) Guard() *core.RouteGuard {
	return r.guard
}

var _ CommandQueryService = (*stubFacadeService)(nil)
