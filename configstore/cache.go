package configstore

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// cachedStore wraps a Store with a short-TTL read cache for the
// snapshot values spec.md §5 says are "read per request and treated as
// immutable for the request's lifetime": TriggerKey, FallbackKey,
// FallbackModelSet, RetryBudget, and the primary pool. RotateCursorAtomic
// is never cached — it is the one datum that must observe every
// request's effect on the others.
type cachedStore struct {
	Store
	c     *cache.Cache
	group singleflight.Group
}

// WithSnapshotCache returns a Store that caches the read-mostly
// configuration snapshot for ttl, collapsing concurrent misses for the
// same key via singleflight so a cache-stampede doesn't fan out into N
// identical database reads.
func WithSnapshotCache(base Store, ttl time.Duration) Store {
	return &cachedStore{Store: base, c: cache.New(ttl, 2*ttl)}
}

func (s *cachedStore) GetTriggerKey(ctx context.Context) (string, error) {
	return cachedString(s, "trigger_key", func() (string, error) { return s.Store.GetTriggerKey(ctx) })
}

func (s *cachedStore) GetFallbackKey(ctx context.Context) (string, error) {
	return cachedString(s, "fallback_key", func() (string, error) { return s.Store.GetFallbackKey(ctx) })
}

func (s *cachedStore) GetRetryBudget(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("retry_budget", func() (any, error) {
		if cached, ok := s.c.Get("retry_budget"); ok {
			return cached.(int), nil
		}
		n, err := s.Store.GetRetryBudget(ctx)
		if err != nil {
			return 0, err
		}
		s.c.SetDefault("retry_budget", n)
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *cachedStore) GetFallbackModelSet(ctx context.Context) ([]string, error) {
	v, err, _ := s.group.Do("fallback_model_set", func() (any, error) {
		if cached, ok := s.c.Get("fallback_model_set"); ok {
			return cached.([]string), nil
		}
		models, err := s.Store.GetFallbackModelSet(ctx)
		if err != nil {
			return nil, err
		}
		s.c.SetDefault("fallback_model_set", models)
		return models, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *cachedStore) GetPrimaryPool(ctx context.Context) ([]PoolEntry, error) {
	v, err, _ := s.group.Do("primary_pool", func() (any, error) {
		if cached, ok := s.c.Get("primary_pool"); ok {
			return cached.([]PoolEntry), nil
		}
		pool, err := s.Store.GetPrimaryPool(ctx)
		if err != nil {
			return nil, err
		}
		s.c.SetDefault("primary_pool", pool)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PoolEntry), nil
}

// invalidate drops every cached snapshot key. Called by the mutating
// operations below so a write is visible to the next read rather than
// lingering for a full TTL.
func (s *cachedStore) invalidate() {
	s.c.Flush()
}

func (s *cachedStore) SetTriggerKey(ctx context.Context, key *string) error {
	defer s.invalidate()
	return s.Store.SetTriggerKey(ctx, key)
}

func (s *cachedStore) SetFallbackKey(ctx context.Context, key *string) error {
	defer s.invalidate()
	return s.Store.SetFallbackKey(ctx, key)
}

func (s *cachedStore) SetRetryBudget(ctx context.Context, n int) error {
	defer s.invalidate()
	return s.Store.SetRetryBudget(ctx, n)
}

func (s *cachedStore) SetFallbackModelSet(ctx context.Context, models []string) error {
	defer s.invalidate()
	return s.Store.SetFallbackModelSet(ctx, models)
}

func (s *cachedStore) AddFallbackModels(ctx context.Context, models []string) error {
	defer s.invalidate()
	return s.Store.AddFallbackModels(ctx, models)
}

func (s *cachedStore) ClearFallbackModels(ctx context.Context) error {
	defer s.invalidate()
	return s.Store.ClearFallbackModels(ctx)
}

func (s *cachedStore) AddPrimaryEntries(ctx context.Context, entries map[string]string) error {
	defer s.invalidate()
	return s.Store.AddPrimaryEntries(ctx, entries)
}

func (s *cachedStore) RemovePrimaryEntry(ctx context.Context, id string) error {
	defer s.invalidate()
	return s.Store.RemovePrimaryEntry(ctx, id)
}

func (s *cachedStore) ClearPrimary(ctx context.Context) error {
	defer s.invalidate()
	return s.Store.ClearPrimary(ctx)
}

func cachedString(s *cachedStore, key string, load func() (string, error)) (string, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := s.c.Get(key); ok {
			return cached.(string), nil
		}
		val, err := load()
		if err != nil {
			return "", err
		}
		s.c.SetDefault(key, val)
		return val, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
