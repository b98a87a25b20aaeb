package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	AuthErrorValidationFailed     = "AUTH_VALIDATION_FAILED"
	AuthErrorAuthenticationFailed = "AUTH_AUTHENTICATION_FAILED"
	AuthErrorTransportFailed      = "AUTH_TRANSPORT_FAILED"
	AuthErrorInternal             = "AUTH_INTERNAL_ERROR"
	LinkErrorVerificationFailed   = "LINK_VERIFICATION_FAILED"
	LinkErrorSecondFactorFailed   = "LINK_SECOND_FACTOR_FAILED"
	LinkErrorInvalidTransition    = "LINK_INVALID_TRANSITION"
)

// internalErrorMessage replaces internal-category detail in every
// outgoing envelope. The original message survives in Metadata for logs.
const internalErrorMessage = "An unexpected error occurred"

func authErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAuthErrorEnvelope(richErr)
	}

	if errors.Is(err, ErrInvalidLinkStatusTransition) {
		return newAuthError(err.Error(), goerrors.CategoryConflict, LinkErrorInvalidTransition)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "no response"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "unreachable"):
		return newAuthError(err.Error(), goerrors.CategoryExternal, AuthErrorTransportFailed)
	case strings.Contains(msg, "second factor"), strings.Contains(msg, "password needed"):
		return newAuthError(err.Error(), goerrors.CategoryAuth, LinkErrorSecondFactorFailed)
	case strings.Contains(msg, "code") && (strings.Contains(msg, "invalid") || strings.Contains(msg, "expired")):
		return newAuthError(err.Error(), goerrors.CategoryAuth, LinkErrorVerificationFailed)
	case strings.Contains(msg, "credentials"), strings.Contains(msg, "unauthorized"):
		return newAuthError(err.Error(), goerrors.CategoryAuth, AuthErrorAuthenticationFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "malformed"):
		return newAuthError(err.Error(), goerrors.CategoryBadInput, AuthErrorValidationFailed)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	if mapped != nil && mapped.Category == goerrors.CategoryInternal {
		mapped.TextCode = AuthErrorInternal
	}
	return ensureAuthErrorEnvelope(mapped)
}

func newAuthError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAuthErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureAuthErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = authHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAuthTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal {
		detail := strings.TrimSpace(err.Message)
		if detail != "" && detail != internalErrorMessage {
			err.WithMetadata(map[string]any{"detail": detail})
		}
		err.Message = internalErrorMessage
	}
	return err
}

func defaultAuthTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AuthErrorValidationFailed
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return AuthErrorAuthenticationFailed
	case goerrors.CategoryConflict:
		return LinkErrorInvalidTransition
	case goerrors.CategoryExternal:
		return AuthErrorTransportFailed
	default:
		return AuthErrorInternal
	}
}

func authHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isTransportFailure reports whether err already carries the transport
// taxonomy, either by text code or by external category. Operation wraps
// must not re-tag such errors: a gateway outage during a confirm renders
// as "try again", never as "check your code".
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, AuthErrorTransportFailed) {
		return true
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryExternal
}

// HasTextCode reports whether err carries the given envelope text code.
// Callers use it to branch on the taxonomy without parsing messages.
func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}
