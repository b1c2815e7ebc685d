package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/config"
)

const (
	reportKeyPrefix     = "report"
	reportScanBatchSize = 100
)

// ReportCache caches per-season report sections (lot summaries, ledger,
// inventory, discrepancies) served by the API. Entries are JSON payloads
// keyed by season and section name.
type ReportCache interface {
	Get(ctx context.Context, season, section string, dest any) (bool, error)
	Set(ctx context.Context, season, section string, value any) error
	InvalidateSeason(ctx context.Context, season string) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context, season, section string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, reportKey(season, section)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode report cache: %w", err)
	}
	return true, nil
}

func (c *redisReportCache) Set(ctx context.Context, season, section string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(season, section), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateSeason(ctx context.Context, season string) error {
	prefix := fmt.Sprintf("%s:%s:", reportKeyPrefix, normalizeKeyPart(season))
	return deleteKeysWithPrefix(ctx, c.client, prefix, reportScanBatchSize)
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix+":", reportScanBatchSize)
}

func (n *noopReportCache) Get(ctx context.Context, season, section string, dest any) (bool, error) {
	return false, nil
}

func (n *noopReportCache) Set(ctx context.Context, season, section string, value any) error {
	return nil
}

func (n *noopReportCache) InvalidateSeason(ctx context.Context, season string) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func reportKey(season, section string) string {
	return fmt.Sprintf("%s:%s:%s", reportKeyPrefix, normalizeKeyPart(season), normalizeKeyPart(section))
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "_")
}
