package core

import (
	"context"
	"testing"
)

func TestGuardAdmit_UnauthenticatedRedirectsToLogin(t *testing.T) {
	fixture := newServiceFixture(t)
	guard := fixture.service.Guard()

	decision := guard.Admit("/dashboard")
	if decision.Allow {
		t.Fatalf("expected protected path blocked without a session")
	}
	if decision.RedirectTo != "/login" {
		t.Fatalf("expected redirect to /login, got %q", decision.RedirectTo)
	}
}

func TestGuardAdmit_PublicPathsAlwaysAllowed(t *testing.T) {
	fixture := newServiceFixture(t)
	guard := fixture.service.Guard()

	for _, path := range []string{"/", "/about", "/about/"} {
		decision := guard.Admit(path)
		if !decision.Allow {
			t.Fatalf("expected %q allowed without a session, got redirect to %q", path, decision.RedirectTo)
		}
	}

	fixture.loginOrFail(t)
	if decision := guard.Admit("/about"); !decision.Allow {
		t.Fatalf("expected /about allowed with a session")
	}
}

func TestGuardAdmit_AuthenticatedBouncedOffEntryPaths(t *testing.T) {
	fixture := newServiceFixture(t)
	guard := fixture.service.Guard()

	if decision := guard.Admit("/login"); !decision.Allow {
		t.Fatalf("expected /login allowed without a session")
	}

	fixture.loginOrFail(t)
	for _, path := range []string{"/login", "/register"} {
		decision := guard.Admit(path)
		if decision.Allow {
			t.Fatalf("expected %q bounced with a session", path)
		}
		if decision.RedirectTo != "/dashboard" {
			t.Fatalf("expected redirect to /dashboard, got %q", decision.RedirectTo)
		}
	}
}

func TestGuardAdmit_AuthenticatedReachesProtectedPaths(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.loginOrFail(t)

	if decision := fixture.service.Guard().Admit("/dashboard"); !decision.Allow {
		t.Fatalf("expected protected path allowed with a session, got redirect to %q", decision.RedirectTo)
	}
}

func TestGuardAdmit_ReactsToLogout(t *testing.T) {
	fixture := newServiceFixture(t)
	guard := fixture.service.Guard()
	fixture.loginOrFail(t)

	if decision := guard.Admit("/dashboard"); !decision.Allow {
		t.Fatalf("expected allow while authenticated")
	}

	fixture.service.Logout(context.Background())
	decision := guard.Admit("/dashboard")
	if decision.Allow {
		t.Fatalf("expected redirect after logout")
	}
	if decision.RedirectTo != "/login" {
		t.Fatalf("expected redirect to /login after logout, got %q", decision.RedirectTo)
	}
}

func TestNormalizePath(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"  ", "/"},
		{"dashboard", "/dashboard"},
		{"/dashboard/", "/dashboard"},
		{"/", "/"},
	} {
		if got := normalizePath(tc.in); got != tc.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
