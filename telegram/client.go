package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/sreenjoy/tez-social-sub001/core"
)

const (
	sendCodePath       = "/telegram/send-code"
	verifyCodePath     = "/telegram/verify-code"
	verifyPasswordPath = "/telegram/verify-password"
	logoutPath         = "/telegram/logout"
)

// The gateway reports an account protected by a cloud password with
// this status marker on an otherwise successful verification.
const statusPasswordRequired = "password_required"

const defaultRequestTimeout = 15 * time.Second

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implements core.LinkClient against the verification gateway's
// REST surface. It owns request shaping and response interpretation;
// transport-level concerns stay in the adapter.
type Client struct {
	adapter core.TransportAdapter
	config  Config
	logger  core.Logger
}

func NewClient(adapter core.TransportAdapter, cfg Config, logger core.Logger) (*Client, error) {
	if adapter == nil {
		return nil, fmt.Errorf("telegram: transport adapter is required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("telegram: gateway base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	logger = glog.Ensure(logger)
	return &Client{adapter: adapter, config: cfg, logger: logger}, nil
}

type gatewayResponse struct {
	Status    string `json:"status"`
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Error     string `json:"error"`
}

func (c *Client) SendCode(ctx context.Context, handle string) error {
	_, err := c.post(ctx, sendCodePath, map[string]string{"phone": handle})
	return err
}

func (c *Client) ConfirmCode(ctx context.Context, handle string, code string) (core.ConfirmResult, error) {
	res, err := c.post(ctx, verifyCodePath, map[string]string{
		"phone": handle,
		"code":  code,
	})
	if err != nil {
		if isPasswordRequired(err) {
			return core.ConfirmResult{Outcome: core.ConfirmOutcomeSecondFactorRequired}, nil
		}
		return core.ConfirmResult{}, err
	}
	return c.confirmResult(res, handle), nil
}

func (c *Client) ConfirmSecondFactor(ctx context.Context, handle string, secret string) (core.ConfirmResult, error) {
	res, err := c.post(ctx, verifyPasswordPath, map[string]string{
		"phone":    handle,
		"password": secret,
	})
	if err != nil {
		return core.ConfirmResult{}, err
	}
	return c.confirmResult(res, handle), nil
}

func (c *Client) Disconnect(ctx context.Context, handle string) error {
	_, err := c.post(ctx, logoutPath, map[string]string{"phone": handle})
	if err != nil && isGatewayNotFound(err) {
		// The gateway already forgot the session. Treat as revoked.
		return nil
	}
	return err
}

func (c *Client) confirmResult(res gatewayResponse, handle string) core.ConfirmResult {
	if strings.EqualFold(strings.TrimSpace(res.Status), statusPasswordRequired) {
		return core.ConfirmResult{Outcome: core.ConfirmOutcomeSecondFactorRequired}
	}
	return core.ConfirmResult{
		Outcome: core.ConfirmOutcomeConnected,
		Identity: core.ExternalIdentity{
			AccountID:   strings.TrimSpace(res.AccountID),
			Handle:      handle,
			DisplayName: strings.TrimSpace(res.FirstName),
		},
	}
}

func (c *Client) post(ctx context.Context, path string, payload map[string]string) (gatewayResponse, error) {
	if c == nil || c.adapter == nil {
		return gatewayResponse{}, fmt.Errorf("telegram: client is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return gatewayResponse{}, fmt.Errorf("telegram: encode request: %w", err)
	}

	res, err := c.adapter.Do(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     c.config.BaseURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
		Timeout: c.config.Timeout,
	})
	if err != nil {
		return gatewayResponse{}, err
	}

	parsed := gatewayResponse{}
	if len(res.Body) > 0 {
		if decodeErr := json.Unmarshal(res.Body, &parsed); decodeErr != nil {
			c.logger.Debug("gateway returned a non-json body", "path", path, "status", res.StatusCode)
		}
	}

	if res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices {
		return parsed, nil
	}
	return gatewayResponse{}, c.gatewayError(path, res.StatusCode, parsed)
}

func (c *Client) gatewayError(path string, statusCode int, res gatewayResponse) error {
	message := strings.TrimSpace(res.Error)
	if message == "" {
		message = fmt.Sprintf("telegram: gateway returned status %d", statusCode)
	}

	category := goerrors.CategoryExternal
	textCode := core.AuthErrorTransportFailed
	switch {
	case isPasswordRequiredMarker(res.Error) || isPasswordRequiredMarker(res.Status):
		category = goerrors.CategoryAuth
		textCode = core.LinkErrorSecondFactorFailed
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		category = goerrors.CategoryAuth
		textCode = core.LinkErrorVerificationFailed
	case statusCode == http.StatusBadRequest:
		category = goerrors.CategoryBadInput
		textCode = core.AuthErrorValidationFailed
	case statusCode == http.StatusNotFound:
		category = goerrors.CategoryNotFound
	}

	return goerrors.New(message, category).
		WithCode(statusCode).
		WithTextCode(textCode).
		WithMetadata(map[string]any{"path": path, "status_code": statusCode})
}

func isPasswordRequired(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == core.LinkErrorSecondFactorFailed &&
		isPasswordRequiredMarker(richErr.Message)
}

func isPasswordRequiredMarker(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Contains(value, statusPasswordRequired) ||
		strings.Contains(value, "session_password_needed")
}

func isGatewayNotFound(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Code == http.StatusNotFound
}

var _ core.LinkClient = (*Client)(nil)
