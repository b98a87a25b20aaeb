package transport

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sreenjoy/tez-social-sub001/core"
)

// RevokingAdapter wraps a transport adapter and enforces the session
// revocation contract: any 401 from the remote clears the persisted
// session before the rejection propagates to the caller. Without this
// ordering a retry could replay a token the server already rejected.
type RevokingAdapter struct {
	next    core.TransportAdapter
	revoker core.SessionRevoker
	logger  core.Logger
}

func NewRevokingAdapter(next core.TransportAdapter, revoker core.SessionRevoker, logger core.Logger) *RevokingAdapter {
	return &RevokingAdapter{next: next, revoker: revoker, logger: logger}
}

func (a *RevokingAdapter) Kind() string {
	if a == nil || a.next == nil {
		return KindREST
	}
	return a.next.Kind()
}

func (a *RevokingAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.next == nil {
		return core.TransportResponse{}, transportError(
			"transport: revoking adapter requires a next adapter",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	res, err := a.next.Do(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}
	if res.StatusCode != http.StatusUnauthorized {
		return res, nil
	}

	if a.revoker != nil {
		if revokeErr := a.revoker.RevokeSession(ctx); revokeErr != nil && a.logger != nil {
			a.logger.Error("revoke session after remote rejection", "error", revokeErr)
		}
	}
	return res, transportError(
		"transport: remote rejected the session token",
		goerrors.CategoryAuth,
		http.StatusUnauthorized,
		map[string]any{"adapter": a.Kind(), "status_code": res.StatusCode},
	)
}

var _ core.TransportAdapter = (*RevokingAdapter)(nil)
