package historico

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "historico:names"

// ErrLookupNotConfigured is returned by a NameCache with nothing to resolve
// names against.
var ErrLookupNotConfigured = errors.New("historico: name lookup not configured")

// NameCache keeps resolved names in Redis. Only found names are cached so a
// reference that starts resolving later is picked up immediately.
type NameCache struct {
	client *redis.Client
	next   Lookup
	ttl    time.Duration
	logger *slog.Logger
}

// NewNameCache wraps next with a Redis cache.
func NewNameCache(client *redis.Client, next Lookup, ttl time.Duration, logger *slog.Logger) *NameCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NameCache{client: client, next: next, ttl: ttl, logger: logger}
}

func cacheKey(relation Relation, id uuid.UUID) string {
	return strings.Join([]string{cacheKeyPrefix, string(relation), id.String()}, ":")
}

// Names implements Lookup.
func (c *NameCache) Names(ctx context.Context, relation Relation, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if c == nil || c.next == nil {
		return nil, ErrLookupNotConfigured
	}
	if c.client == nil {
		return c.next.Names(ctx, relation, ids)
	}
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(relation, id)
	}
	cached, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("historico name cache read", slog.String("relation", string(relation)), slog.Any("error", err))
		return c.next.Names(ctx, relation, ids)
	}
	var misses []uuid.UUID
	for i, value := range cached {
		if name, ok := value.(string); ok && name != "" {
			out[ids[i]] = name
			continue
		}
		misses = append(misses, ids[i])
	}
	if len(misses) == 0 {
		return out, nil
	}
	found, err := c.next.Names(ctx, relation, misses)
	if err != nil {
		return nil, err
	}
	pipe := c.client.Pipeline()
	for id, name := range found {
		out[id] = name
		pipe.Set(ctx, cacheKey(relation, id), name, c.ttl)
	}
	if len(found) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			c.logger.Warn("historico name cache write", slog.String("relation", string(relation)), slog.Any("error", err))
		}
	}
	return out, nil
}

// Invalidate drops cached names of the relation, or of every relation when
// relation is empty.
func (c *NameCache) Invalidate(ctx context.Context, relation Relation) error {
	if c == nil || c.client == nil {
		return nil
	}
	pattern := cacheKeyPrefix + ":*"
	if relation != "" {
		pattern = cacheKeyPrefix + ":" + string(relation) + ":*"
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
