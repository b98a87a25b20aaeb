package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sreenjoy/tez-social-sub001/core"
	authmigrations "github.com/sreenjoy/tez-social-sub001/migrations"
	sqlstore "github.com/sreenjoy/tez-social-sub001/store/sql"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "tez-social-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"ts_connections",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "ts_connections" {
		t.Fatalf("expected ts_connections table, got %q", tableName)
	}
}

func TestSessionStore_SingleSlotReplacement(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	sessionStore := factory.SessionStore()
	if sessionStore == nil {
		t.Fatalf("expected session store from factory")
	}

	if _, err := sessionStore.Get(ctx); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("expected session not found on empty slot, got %v", err)
	}

	first := core.Session{
		UserID:      "user_1",
		DisplayName: "Ada",
		Email:       "ada@example.com",
		Token:       "token_1",
		IssuedAt:    time.Now().UTC().Add(-time.Minute),
	}
	if err := sessionStore.Put(ctx, first); err != nil {
		t.Fatalf("put first session: %v", err)
	}

	second := first
	second.Token = "token_2"
	second.IssuedAt = time.Now().UTC()
	if err := sessionStore.Put(ctx, second); err != nil {
		t.Fatalf("put replacement session: %v", err)
	}

	loaded, err := sessionStore.Get(ctx)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if loaded.Token != "token_2" {
		t.Fatalf("expected replacement token, got %q", loaded.Token)
	}

	var count int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM ts_sessions",
	).Scan(ctx, &count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected single session slot, got %d rows", count)
	}

	if err := sessionStore.Clear(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if _, err := sessionStore.Get(ctx); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("expected session not found after clear, got %v", err)
	}
}

func TestConnectionStore_UpsertAndExpireStale(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	connectionStore := factory.ConnectionStore()
	if connectionStore == nil {
		t.Fatalf("expected connection store from factory")
	}

	if _, err := connectionStore.GetByUser(ctx, "user_1"); !errors.Is(err, core.ErrConnectionNotFound) {
		t.Fatalf("expected connection not found for unlinked user, got %v", err)
	}

	now := time.Now().UTC()
	created, err := connectionStore.Upsert(ctx, core.Connection{
		UserID:          "user_1",
		ExternalHandle:  "+15550100",
		Status:          core.LinkStatusCodeRequested,
		CodeRequestedAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("upsert connection: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated connection id")
	}

	updated, err := connectionStore.Upsert(ctx, core.Connection{
		UserID:         "user_1",
		ExternalHandle: "+15550100",
		Status:         core.LinkStatusConnected,
	})
	if err != nil {
		t.Fatalf("upsert existing connection: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected upsert to reuse row %q, got %q", created.ID, updated.ID)
	}

	if _, err := connectionStore.Upsert(ctx, core.Connection{
		UserID:          "user_2",
		ExternalHandle:  "+15550101",
		Status:          core.LinkStatusCodeRequested,
		CodeRequestedAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("upsert second user connection: %v", err)
	}

	expired, err := connectionStore.ExpireStale(ctx, now.Add(-time.Minute), "verification code expired")
	if err != nil {
		t.Fatalf("expire stale connections: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expected 1 expired handshake, got %d", expired)
	}

	reverted, err := connectionStore.GetByUser(ctx, "user_2")
	if err != nil {
		t.Fatalf("get reverted connection: %v", err)
	}
	if reverted.Status != core.LinkStatusDisconnected {
		t.Fatalf("expected stale handshake reverted to disconnected, got %q", reverted.Status)
	}
	if reverted.LastError != "verification code expired" {
		t.Fatalf("unexpected revert reason: %q", reverted.LastError)
	}

	connected, err := connectionStore.GetByUser(ctx, "user_1")
	if err != nil {
		t.Fatalf("get connected connection: %v", err)
	}
	if connected.Status != core.LinkStatusConnected {
		t.Fatalf("expected connected row untouched by sweep, got %q", connected.Status)
	}

	if err := connectionStore.Delete(ctx, "user_1"); err != nil {
		t.Fatalf("delete connection: %v", err)
	}
	if _, err := connectionStore.GetByUser(ctx, "user_1"); !errors.Is(err, core.ErrConnectionNotFound) {
		t.Fatalf("expected connection not found after delete, got %v", err)
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:tez-social-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = authmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != authmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, authmigrations.WithValidationTargets(authmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
