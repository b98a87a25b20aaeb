package query

import (
	"context"

	"github.com/sreenjoy/tez-social-sub001/core"
)

type SessionReader interface {
	CheckAuth(ctx context.Context) bool
	Current() core.SessionState
}

type LinkReader interface {
	GetConnection(ctx context.Context) (*core.Connection, error)
	CurrentLink() core.LinkState
}

type GuardReader interface {
	Guard() *core.RouteGuard
}

type CheckAuthQuery struct {
	reader SessionReader
}

func NewCheckAuthQuery(reader SessionReader) *CheckAuthQuery {
	return &CheckAuthQuery{reader: reader}
}

func (q *CheckAuthQuery) Query(ctx context.Context, _ CheckAuthMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: session reader is required")
	}
	return q.reader.CheckAuth(ctx), nil
}

type CurrentSessionQuery struct {
	reader SessionReader
}

func NewCurrentSessionQuery(reader SessionReader) *CurrentSessionQuery {
	return &CurrentSessionQuery{reader: reader}
}

func (q *CurrentSessionQuery) Query(_ context.Context, _ CurrentSessionMessage) (core.SessionState, error) {
	if q == nil || q.reader == nil {
		return core.SessionState{}, queryDependencyError("query: session reader is required")
	}
	return q.reader.Current(), nil
}

type GetConnectionQuery struct {
	reader LinkReader
}

func NewGetConnectionQuery(reader LinkReader) *GetConnectionQuery {
	return &GetConnectionQuery{reader: reader}
}

func (q *GetConnectionQuery) Query(ctx context.Context, _ GetConnectionMessage) (*core.Connection, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: link reader is required")
	}
	return q.reader.GetConnection(ctx)
}

type CurrentLinkQuery struct {
	reader LinkReader
}

func NewCurrentLinkQuery(reader LinkReader) *CurrentLinkQuery {
	return &CurrentLinkQuery{reader: reader}
}

func (q *CurrentLinkQuery) Query(_ context.Context, _ CurrentLinkMessage) (core.LinkState, error) {
	if q == nil || q.reader == nil {
		return core.LinkState{}, queryDependencyError("query: link reader is required")
	}
	return q.reader.CurrentLink(), nil
}

type GuardAdmitQuery struct {
	reader GuardReader
}

func NewGuardAdmitQuery(reader GuardReader) *GuardAdmitQuery {
	return &GuardAdmitQuery{reader: reader}
}

func (q *GuardAdmitQuery) Query(_ context.Context, msg GuardAdmitMessage) (core.GuardDecision, error) {
	if q == nil || q.reader == nil {
		return core.GuardDecision{}, queryDependencyError("query: guard reader is required")
	}
	return q.reader.Guard().Admit(msg.Path), nil
}
