package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Login verifies credentials against the remote capability and replaces
// the persisted session slot. Prior state is left untouched on any
// failure; the slot write is atomic so token and user identity become
// visible together.
func (s *Service) Login(ctx context.Context, email string, password string) (session Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"email": redactEmail(email)}
	defer func() {
		s.observeOperation(ctx, startedAt, "login", err, fields)
	}()

	if err = validateCredentialInput(email, password); err != nil {
		err = s.mapError(err)
		return Session{}, err
	}
	if s.credentialVerifier == nil {
		err = s.mapError(fmt.Errorf("core: credential verifier is required"))
		return Session{}, err
	}

	verified, verifyErr := s.credentialVerifier.Verify(ctx, strings.TrimSpace(email), password)
	if verifyErr != nil {
		err = s.mapError(authenticationFailed(verifyErr))
		return Session{}, err
	}

	session, err = s.installSession(ctx, verified)
	if err != nil {
		return Session{}, err
	}
	fields["user_id"] = session.UserID
	return session, nil
}

// Register creates the account remotely and treats the resulting session
// identically to a post-login session.
func (s *Service) Register(ctx context.Context, name string, email string, password string) (session Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"email": redactEmail(email)}
	defer func() {
		s.observeOperation(ctx, startedAt, "register", err, fields)
	}()

	if strings.TrimSpace(name) == "" {
		err = s.mapError(goerrors.NewValidation("core: validation failed", goerrors.FieldError{
			Field:   "name",
			Message: "name is required",
		}).WithTextCode(AuthErrorValidationFailed))
		return Session{}, err
	}
	if err = validateCredentialInput(email, password); err != nil {
		err = s.mapError(err)
		return Session{}, err
	}
	if s.credentialVerifier == nil {
		err = s.mapError(fmt.Errorf("core: credential verifier is required"))
		return Session{}, err
	}

	created, createErr := s.credentialVerifier.Create(ctx, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if createErr != nil {
		err = s.mapError(authenticationFailed(createErr))
		return Session{}, err
	}

	session, err = s.installSession(ctx, created)
	if err != nil {
		return Session{}, err
	}
	fields["user_id"] = session.UserID
	return session, nil
}

// Logout clears the persisted slot and the in-memory session
// unconditionally. A store failure is logged, never surfaced.
func (s *Service) Logout(ctx context.Context) {
	if s == nil {
		return
	}
	if s.sessionStore != nil {
		if err := s.sessionStore.Clear(ctx); err != nil {
			s.logError(ctx, "logout: clear persisted session failed", map[string]any{"error": err.Error()})
		}
	}
	s.clearSessionState()
	s.logInfo(ctx, "logout succeeded", map[string]any{})
}

// CheckAuth reconstructs the session from persisted storage without a
// network round trip. A missing, malformed, or expired record means "not
// authenticated", never a fatal error.
func (s *Service) CheckAuth(ctx context.Context) bool {
	if s == nil || s.sessionStore == nil {
		return false
	}
	persisted, err := s.sessionStore.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logError(ctx, "check_auth: read persisted session failed", map[string]any{"error": err.Error()})
		}
		s.clearSessionState()
		return false
	}
	now := time.Now().UTC()
	if persisted.IsZero() || persisted.Expired(now) {
		if clearErr := s.sessionStore.Clear(ctx); clearErr != nil {
			s.logError(ctx, "check_auth: clear stale session failed", map[string]any{"error": clearErr.Error()})
		}
		s.clearSessionState()
		return false
	}

	s.mu.Lock()
	s.session = persisted
	s.isAuthenticated = true
	s.mu.Unlock()
	s.notifySessionSubscribers()
	return true
}

// RevokeSession implements the global authorization-rejection contract:
// any component observing a remote 401 clears the persisted token before
// the error reaches its caller.
func (s *Service) RevokeSession(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if s.sessionStore != nil {
		if err := s.sessionStore.Clear(ctx); err != nil {
			s.logError(ctx, "revoke_session: clear persisted session failed", map[string]any{"error": err.Error()})
			return err
		}
	}
	s.clearSessionState()
	s.logInfo(ctx, "session revoked after authorization rejection", map[string]any{})
	return nil
}

// Current returns the reactive session view.
func (s *Service) Current() SessionState {
	if s == nil {
		return SessionState{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionState{
		User:            s.session.User(),
		IsAuthenticated: s.isAuthenticated,
	}
}

func (s *Service) SubscribeSession(subscriber SessionSubscriber) {
	if s == nil || subscriber == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionSubscribers = append(s.sessionSubscribers, subscriber)
}

func (s *Service) installSession(ctx context.Context, verified VerifiedCredentials) (Session, error) {
	if s.sessionStore == nil {
		return Session{}, s.mapError(fmt.Errorf("core: session store is required"))
	}
	now := time.Now().UTC()
	session := Session{
		UserID:      verified.UserID,
		DisplayName: verified.DisplayName,
		Email:       verified.Email,
		Token:       verified.Token,
		IssuedAt:    now,
	}
	if s.config.Session.TTL > 0 {
		session.ExpiresAt = now.Add(s.config.Session.TTL)
	}
	if err := s.sessionStore.Put(ctx, session); err != nil {
		return Session{}, s.mapError(err)
	}

	s.mu.Lock()
	s.session = session
	s.isAuthenticated = true
	s.mu.Unlock()
	s.notifySessionSubscribers()
	return session, nil
}

func (s *Service) clearSessionState() {
	s.mu.Lock()
	s.session = Session{}
	s.isAuthenticated = false
	s.mu.Unlock()
	s.notifySessionSubscribers()
}

func (s *Service) notifySessionSubscribers() {
	s.mu.RLock()
	subscribers := make([]SessionSubscriber, len(s.sessionSubscribers))
	copy(subscribers, s.sessionSubscribers)
	state := SessionState{
		User:            s.session.User(),
		IsAuthenticated: s.isAuthenticated,
	}
	s.mu.RUnlock()
	for _, subscriber := range subscribers {
		subscriber(state)
	}
}

func (s *Service) currentUserID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isAuthenticated || strings.TrimSpace(s.session.UserID) == "" {
		return "", ErrNotAuthenticated
	}
	return s.session.UserID, nil
}

func validateCredentialInput(email string, password string) error {
	var fieldErrors []goerrors.FieldError
	if !validEmail(email) {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "email",
			Message: "a well-formed email is required",
		})
	}
	if strings.TrimSpace(password) == "" {
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   "password",
			Message: "password is required",
		})
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return goerrors.NewValidation("core: validation failed", fieldErrors...).
		WithTextCode(AuthErrorValidationFailed)
}

func authenticationFailed(cause error) error {
	if isTransportFailure(cause) {
		return cause
	}
	return goerrors.Wrap(cause, goerrors.CategoryAuth, "core: authentication failed").
		WithTextCode(AuthErrorAuthenticationFailed)
}

func redactEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
