package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/sreenjoy/tez-social-sub001/core"
)

const connectionCacheKeyPrefix = "tez-social::connection::v1"

// CachedConnectionStore keeps the per-user link record in a read-through
// cache. Every write goes to the base store first, then invalidates the
// user's cached entry, so readers only ever see committed state.
type CachedConnectionStore struct {
	base  core.ConnectionStore
	cache repositorycache.CacheService
}

func NewCachedConnectionStore(
	base core.ConnectionStore,
	cacheService repositorycache.CacheService,
) (*CachedConnectionStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base connection store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: connection cache service is required")
	}
	return &CachedConnectionStore{base: base, cache: cacheService}, nil
}

// ConnectionCacheKey returns the deterministic cache key contract for
// connection reads: tez-social::connection::v1::<user_id> with the user
// segment URL-path escaped.
func ConnectionCacheKey(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("sqlstore: user id is required")
	}
	return strings.Join([]string{connectionCacheKeyPrefix, url.PathEscape(userID)}, "::"), nil
}

func (s *CachedConnectionStore) GetByUser(ctx context.Context, userID string) (core.Connection, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: cached connection store is not configured")
	}
	cacheKey, err := ConnectionCacheKey(userID)
	if err != nil {
		return core.Connection{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Connection, error) {
		return s.base.GetByUser(ctx, userID)
	})
}

func (s *CachedConnectionStore) Upsert(ctx context.Context, conn core.Connection) (core.Connection, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: cached connection store is not configured")
	}
	out, err := s.base.Upsert(ctx, conn)
	if err != nil {
		return core.Connection{}, err
	}
	if err := s.invalidate(ctx, out.UserID); err != nil {
		return core.Connection{}, err
	}
	return out, nil
}

func (s *CachedConnectionStore) Delete(ctx context.Context, userID string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached connection store is not configured")
	}
	if err := s.base.Delete(ctx, userID); err != nil {
		return err
	}
	return s.invalidate(ctx, userID)
}

// ExpireStale snapshots the affected users before the bulk update so it
// can drop exactly their cached entries afterwards.
func (s *CachedConnectionStore) ExpireStale(ctx context.Context, before time.Time, reason string) (int, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return 0, fmt.Errorf("sqlstore: cached connection store is not configured")
	}

	var staleUsers []string
	if lister, ok := s.base.(interface {
		StaleUsers(ctx context.Context, before time.Time) ([]string, error)
	}); ok {
		users, err := lister.StaleUsers(ctx, before)
		if err != nil {
			return 0, err
		}
		staleUsers = users
	}

	expired, err := s.base.ExpireStale(ctx, before, reason)
	if err != nil {
		return 0, err
	}
	for _, userID := range staleUsers {
		if invErr := s.invalidate(ctx, userID); invErr != nil {
			return expired, invErr
		}
	}
	return expired, nil
}

func (s *CachedConnectionStore) invalidate(ctx context.Context, userID string) error {
	cacheKey, err := ConnectionCacheKey(userID)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var _ core.ConnectionStore = (*CachedConnectionStore)(nil)
