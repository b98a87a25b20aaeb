package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type memorySessionStore struct {
	mu      sync.Mutex
	record  Session
	present bool

	putErr   error
	getErr   error
	clearErr error
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{}
}

func (s *memorySessionStore) Put(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.record = session
	s.present = true
	return nil
}

func (s *memorySessionStore) Get(context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	if !s.present {
		return Session{}, ErrSessionNotFound
	}
	return s.record, nil
}

func (s *memorySessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.record = Session{}
	s.present = false
	return nil
}

func (s *memorySessionStore) persisted() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record, s.present
}

type memoryConnectionStore struct {
	mu     sync.Mutex
	byUser map[string]Connection
}

func newMemoryConnectionStore() *memoryConnectionStore {
	return &memoryConnectionStore{byUser: map[string]Connection{}}
}

func (s *memoryConnectionStore) GetByUser(_ context.Context, userID string) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.byUser[strings.TrimSpace(userID)]
	if !ok {
		return Connection{}, ErrConnectionNotFound
	}
	return conn, nil
}

func (s *memoryConnectionStore) Upsert(_ context.Context, conn Connection) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(conn.UserID) == "" {
		return Connection{}, fmt.Errorf("user id is required")
	}
	s.byUser[conn.UserID] = conn
	return conn, nil
}

func (s *memoryConnectionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, strings.TrimSpace(userID))
	return nil
}

func (s *memoryConnectionStore) ExpireStale(_ context.Context, before time.Time, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for userID, conn := range s.byUser {
		if conn.Status != LinkStatusCodeRequested && conn.Status != LinkStatusAwaitingSecondFactor {
			continue
		}
		if conn.CodeRequestedAt.IsZero() || !conn.CodeRequestedAt.Before(before) {
			continue
		}
		conn.Status = LinkStatusDisconnected
		conn.LastError = reason
		conn.UpdatedAt = time.Now().UTC()
		s.byUser[userID] = conn
		expired++
	}
	return expired, nil
}

type fakeLinkClient struct {
	mu sync.Mutex

	sendErr        error
	confirmResult  ConfirmResult
	confirmErr     error
	secondResult   ConfirmResult
	secondErr      error
	disconnectErr  error
	sendCalls      int
	confirmCalls   int
	secondCalls    int
	disconnects    int
	lastHandle     string
	lastCode       string
	lastSecret     string
}

func (c *fakeLinkClient) SendCode(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendCalls++
	c.lastHandle = handle
	return c.sendErr
}

func (c *fakeLinkClient) ConfirmCode(_ context.Context, handle string, code string) (ConfirmResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmCalls++
	c.lastHandle = handle
	c.lastCode = code
	if c.confirmErr != nil {
		return ConfirmResult{}, c.confirmErr
	}
	return c.confirmResult, nil
}

func (c *fakeLinkClient) ConfirmSecondFactor(_ context.Context, handle string, secret string) (ConfirmResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secondCalls++
	c.lastHandle = handle
	c.lastSecret = secret
	if c.secondErr != nil {
		return ConfirmResult{}, c.secondErr
	}
	return c.secondResult, nil
}

func (c *fakeLinkClient) Disconnect(_ context.Context, handle string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	c.lastHandle = handle
	return c.disconnectErr
}

type fakeCredentialVerifier struct {
	verifyErr error
	createErr error
	result    VerifiedCredentials
}

func (v *fakeCredentialVerifier) Verify(_ context.Context, email string, _ string) (VerifiedCredentials, error) {
	if v.verifyErr != nil {
		return VerifiedCredentials{}, v.verifyErr
	}
	out := v.result
	if out.Email == "" {
		out.Email = email
	}
	return out, nil
}

func (v *fakeCredentialVerifier) Create(_ context.Context, name string, email string, _ string) (VerifiedCredentials, error) {
	if v.createErr != nil {
		return VerifiedCredentials{}, v.createErr
	}
	out := v.result
	if out.DisplayName == "" {
		out.DisplayName = name
	}
	if out.Email == "" {
		out.Email = email
	}
	return out, nil
}

type serviceFixture struct {
	service     *Service
	sessions    *memorySessionStore
	connections *memoryConnectionStore
	client      *fakeLinkClient
	verifier    *fakeCredentialVerifier
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	sessions := newMemorySessionStore()
	connections := newMemoryConnectionStore()
	client := &fakeLinkClient{}
	verifier := &fakeCredentialVerifier{
		result: VerifiedCredentials{
			UserID:      "user_1",
			DisplayName: "Ada",
			Email:       "ada@example.com",
			Token:       "token_1",
		},
	}
	service, err := NewService(Config{},
		WithSessionStore(sessions),
		WithConnectionStore(connections),
		WithLinkClient(client),
		WithCredentialVerifier(verifier),
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &serviceFixture{
		service:     service,
		sessions:    sessions,
		connections: connections,
		client:      client,
		verifier:    verifier,
	}
}

func (f *serviceFixture) loginOrFail(t *testing.T) Session {
	t.Helper()
	session, err := f.service.Login(context.Background(), "ada@example.com", "secret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return session
}
