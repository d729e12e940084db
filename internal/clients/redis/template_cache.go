package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/studyowl/tutor-backend/internal/platform/envutil"
	"github.com/studyowl/tutor-backend/internal/platform/logger"
)

// TemplateCache fronts the template store with a short-TTL read cache. It is
// strictly best-effort: misses and transport errors both read as "not cached",
// so the resolver falls through to Postgres the same way either way.
type TemplateCache interface {
	Get(ctx context.Context, usageType, subject string) (string, bool)
	Set(ctx context.Context, usageType, subject, content string)
	Close() error
}

type templateCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewTemplateCache connects to REDIS_ADDR. Callers treat a nil cache as
// disabled, so a missing address is an error here rather than a silent no-op.
func NewTemplateCache(log *logger.Logger) (TemplateCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.Get("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := time.Duration(envutil.Int("TEMPLATE_CACHE_TTL_SECONDS", 60)) * time.Second
	return &templateCache{
		log: log.With("service", "TemplateCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func (c *templateCache) Get(ctx context.Context, usageType, subject string) (string, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(usageType, subject)).Result()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Debug("template cache read failed", "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *templateCache) Set(ctx context.Context, usageType, subject, content string) {
	if err := c.rdb.Set(ctx, cacheKey(usageType, subject), content, c.ttl).Err(); err != nil {
		c.log.Debug("template cache write failed", "error", err)
	}
}

func (c *templateCache) Close() error { return c.rdb.Close() }

func cacheKey(usageType, subject string) string {
	return "tpl:" + usageType + ":" + strings.ToLower(subject)
}
