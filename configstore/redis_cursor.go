package configstore

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/go-redis/redis/v8"
)

// redisCursorStore wraps a Store and replaces its rotation allocation
// with a Redis INCR, which gives true cross-instance atomicity rather
// than the gorm CAS-loop's optimistic-retry approximation. Grounded on
// the teacher's common/redis.go RDB client usage.
type redisCursorStore struct {
	Store
	rdb redis.Cmdable
	key string
}

// WithRedisCursor returns a Store that delegates every operation to
// base except rotation, which it serves from Redis when rdb is
// non-nil. This is the "prefers the Redis INCR path when Redis is
// configured" branch from SPEC_FULL.md §5.1.
func WithRedisCursor(base Store, rdb redis.Cmdable) Store {
	if rdb == nil {
		return base
	}
	return &redisCursorStore{Store: base, rdb: rdb, key: "gateway:rotation:cursor"}
}

func (s *redisCursorStore) RotateCursorAtomic(ctx context.Context, poolSize int) (string, int64, error) {
	if poolSize <= 0 {
		return "", 0, errors.New("rotate cursor: empty pool")
	}

	cursor, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		return "", 0, errors.Wrap(err, "redis INCR rotation cursor")
	}
	// INCR returns the post-increment value; the allocation uses the
	// pre-increment slot so the first call selects index 0.
	allocated := cursor - 1

	pool, err := s.Store.GetPrimaryPool(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(pool) == 0 {
		return "", 0, errors.New("rotate cursor: empty pool")
	}
	idx := int(allocated % int64(len(pool)))
	return pool[idx].Credential, cursor, nil
}
