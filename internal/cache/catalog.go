// Package cache keeps the professional and service catalogs in redis.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clinic-scheduling-api/internal/model"
)

const (
	keyProfessionals = "clinic:catalog:professionals"
	keyServices      = "clinic:catalog:services"
)

type Source interface {
	ListProfessionals(ctx context.Context) ([]model.Professional, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}

// Catalog is a read-through cache in front of Source. Redis errors fall back
// to the source.
type Catalog struct {
	src Source
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCatalog(src Source, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{src: src, rdb: rdb, ttl: ttl, log: log}
}

func (c *Catalog) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	return readThrough(ctx, c, keyProfessionals, c.src.ListProfessionals)
}

func (c *Catalog) ListServices(ctx context.Context) ([]model.Service, error) {
	return readThrough(ctx, c, keyServices, c.src.ListServices)
}

// Invalidate drops both cached lists.
func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, keyProfessionals, keyServices).Err()
}

func readThrough[T any](ctx context.Context, c *Catalog, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		c.log.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}
