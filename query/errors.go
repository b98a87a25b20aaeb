package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sreenjoy/tez-social-sub001/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.AuthErrorInternal)
}
