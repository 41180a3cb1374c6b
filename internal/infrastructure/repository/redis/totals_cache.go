package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"
	"github.com/riskibarqy/volleystats/internal/domain/matchstats"
)

const defaultKeyPrefix = "volleystats:totals:"

// kvClient is the subset of *goredis.Client the cache needs.
type kvClient interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// TotalsCache stores parsed totals as JSON documents so several processes
// share one download per stats URL. A zero ttl keeps entries forever.
type TotalsCache struct {
	client    kvClient
	keyPrefix string
	ttl       time.Duration
}

func NewTotalsCache(client kvClient, keyPrefix string, ttl time.Duration) *TotalsCache {
	if strings.TrimSpace(keyPrefix) == "" {
		keyPrefix = defaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TotalsCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *TotalsCache) Get(ctx context.Context, statsURL string) ([]matchstats.Totals, bool, error) {
	raw, err := c.client.Get(ctx, c.key(statsURL)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get totals stats_url=%s: %w", statsURL, err)
	}

	totals := make([]matchstats.Totals, 0, 2)
	if err := sonic.Unmarshal(raw, &totals); err != nil {
		return nil, false, fmt.Errorf("decode cached totals stats_url=%s: %w", statsURL, err)
	}
	return totals, true, nil
}

func (c *TotalsCache) Set(ctx context.Context, statsURL string, totals []matchstats.Totals) error {
	if totals == nil {
		totals = []matchstats.Totals{}
	}
	encoded, err := sonic.Marshal(totals)
	if err != nil {
		return fmt.Errorf("encode totals stats_url=%s: %w", statsURL, err)
	}
	if err := c.client.Set(ctx, c.key(statsURL), encoded, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set totals stats_url=%s: %w", statsURL, err)
	}
	return nil
}

func (c *TotalsCache) key(statsURL string) string {
	return c.keyPrefix + strings.TrimSpace(statsURL)
}
