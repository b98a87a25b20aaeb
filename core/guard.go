package core

import (
	"strings"
)

// RouteGuard admits or redirects navigation based on the current session
// state. It is a pure function of the configured paths and the session
// checker, with no state of its own.
type RouteGuard struct {
	config  GuardConfig
	session interface{ Current() SessionState }
}

func NewRouteGuard(cfg GuardConfig, session interface{ Current() SessionState }) *RouteGuard {
	return &RouteGuard{config: cfg, session: session}
}

// Guard returns a route guard bound to the service's session state.
func (s *Service) Guard() *RouteGuard {
	if s == nil {
		return NewRouteGuard(DefaultConfig().Guard, nil)
	}
	return NewRouteGuard(s.config.Guard, s)
}

// Admit decides whether path may be reached. Unauthenticated callers are
// redirected to the login entry point; authenticated callers hitting the
// public-only entry points land on the authenticated home instead.
func (g *RouteGuard) Admit(path string) GuardDecision {
	if g == nil {
		return GuardDecision{Allow: true}
	}
	path = normalizePath(path)
	authenticated := false
	if g.session != nil {
		authenticated = g.session.Current().IsAuthenticated
	}

	if containsPath(g.config.EntryPaths, path) {
		if authenticated {
			return GuardDecision{RedirectTo: g.config.HomePath}
		}
		return GuardDecision{Allow: true}
	}
	if containsPath(g.config.PublicPaths, path) {
		return GuardDecision{Allow: true}
	}
	if authenticated {
		return GuardDecision{Allow: true}
	}
	return GuardDecision{RedirectTo: g.config.LoginPath}
}

func containsPath(paths []string, path string) bool {
	for _, candidate := range paths {
		if normalizePath(candidate) == path {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
