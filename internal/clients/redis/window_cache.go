package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/logger"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/services"
	"github.com/4Sighteducation/VESPA-questionniare-v2/internal/utils"
)

// WindowCache caches establishment cycle windows in Redis so every
// questionnaire validation does not round-trip the datastore. Misses and
// Redis failures fall through to the wrapped source.
type WindowCache interface {
	services.CycleWindowSource
	Invalidate(ctx context.Context, establishmentID string) error
	Close() error
}

type windowCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	source services.CycleWindowSource
	ttl    time.Duration
}

func NewWindowCache(source services.CycleWindowSource, log *logger.Logger) (WindowCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if source == nil {
		return nil, fmt.Errorf("window source required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("CYCLE_WINDOW_CACHE_TTL_SECONDS", 300, log)

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

	return &windowCache{
		log:    log.With("service", "RedisWindowCache"),
		rdb:    rdb,
		source: source,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func windowKey(establishmentID string) string {
	return "vespa:cycle_windows:" + establishmentID
}

func (c *windowCache) WindowsFor(ctx context.Context, tx *gorm.DB, est *services.EstablishmentInfo) ([]services.CycleWindow, error) {
	if c == nil || c.rdb == nil {
		return c.source.WindowsFor(ctx, tx, est)
	}
	if est == nil {
		return nil, nil
	}
	key := windowKey(est.ID.String())

	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var windows []services.CycleWindow
		if err := json.Unmarshal([]byte(raw), &windows); err == nil {
			return windows, nil
		}
		c.log.Warn("bad cached cycle windows, refetching", "key", key)
	} else if err != goredis.Nil {
		c.log.Warn("redis get failed, falling through", "key", key, "error", err)
	}

	windows, err := c.source.WindowsFor(ctx, tx, est)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(windows); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("redis set failed", "key", key, "error", err)
		}
	}
	return windows, nil
}

func (c *windowCache) Invalidate(ctx context.Context, establishmentID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, windowKey(establishmentID)).Err()
}

func (c *windowCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
