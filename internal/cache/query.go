package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quartz-site/internal/metrics"

	"golang.org/x/sync/singleflight"
)

const queryKeyPrefix = "qs:"

// Store persists cached query results. *Redis implements it.
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Query is a keyed read-through cache for backend reads. Concurrent loads of
// the same key share one backend call. A nil store disables storage and keeps
// only the de-duplication.
//
// Every key family carries a generation bumped by Invalidate. A load that
// started before an invalidation is neither written back nor handed to
// callers that arrived after it.
type Query struct {
	store   Store
	group   singleflight.Group
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	gens map[string]uint64
}

type loaded struct {
	value any
	gen   uint64
}

// NewQuery returns a query cache storing entries in store for ttl.
func NewQuery(store Store, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *Query {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Query{
		store:   store,
		ttl:     ttl,
		logger:  logger.With("component", "query_cache"),
		metrics: m,
		gens:    make(map[string]uint64),
	}
}

func (q *Query) generation(family string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gens[family]
}

// Fetch returns the cached value for key, calling load on a miss.
func Fetch[T any](ctx context.Context, q *Query, key string, load func(context.Context) (T, error)) (T, error) {
	family := keyFamily(key)
	if q.store != nil {
		var cached T
		ok, err := q.store.GetJSON(ctx, queryKeyPrefix+key, &cached)
		if err != nil {
			q.logger.Warn("read query cache failed", "key", key, "error", err)
		} else if ok {
			q.record(family, "hit")
			return cached, nil
		}
	}
	q.record(family, "miss")

	gen := q.generation(family)
	res, err := q.load(ctx, key, family, gen, func(ctx context.Context) (any, error) { return load(ctx) })
	if err == nil && res.gen != gen {
		// Joined a load that began before the last invalidation.
		q.group.Forget(key)
		res, err = q.load(ctx, key, family, gen, func(ctx context.Context) (any, error) { return load(ctx) })
	}
	if err != nil {
		var zero T
		return zero, err
	}
	value, ok := res.value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query cache %s: unexpected %T", key, res.value)
	}
	return value, nil
}

func (q *Query) load(ctx context.Context, key, family string, gen uint64, load func(context.Context) (any, error)) (loaded, error) {
	v, err, _ := q.group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if q.store != nil {
			q.writeBack(ctx, key, family, gen, value)
		}
		return loaded{value: value, gen: gen}, nil
	})
	if err != nil {
		return loaded{}, err
	}
	return v.(loaded), nil
}

// writeBack stores value unless family was invalidated while it loaded. The
// second check covers an invalidation landing between the first check and
// the write.
func (q *Query) writeBack(ctx context.Context, key, family string, gen uint64, value any) {
	if q.generation(family) != gen {
		q.logger.Debug("skip stale query cache write", "key", key)
		return
	}
	if err := q.store.SetJSON(ctx, queryKeyPrefix+key, value, q.ttl); err != nil {
		q.logger.Warn("write query cache failed", "key", key, "error", err)
		return
	}
	if q.generation(family) != gen {
		if _, err := q.store.DeletePrefix(ctx, queryKeyPrefix+key); err != nil {
			q.logger.Warn("drop stale query cache entry failed", "key", key, "error", err)
		}
	}
}

// Invalidate drops every cached entry whose key starts with prefix.
func (q *Query) Invalidate(ctx context.Context, prefix string) {
	q.mu.Lock()
	q.gens[keyFamily(prefix)]++
	q.mu.Unlock()
	if q.store == nil {
		return
	}
	n, err := q.store.DeletePrefix(ctx, queryKeyPrefix+prefix)
	if err != nil {
		q.logger.Warn("invalidate query cache failed", "prefix", prefix, "error", err)
		q.metrics.Error("query_cache")
		return
	}
	q.logger.Debug("query cache invalidated", "prefix", prefix, "keys", n)
}

func (q *Query) record(family, result string) {
	if q.metrics == nil {
		return
	}
	q.metrics.CacheLookups.WithLabelValues(family, result).Inc()
}

func keyFamily(key string) string {
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		return key[:idx]
	}
	return key
}
