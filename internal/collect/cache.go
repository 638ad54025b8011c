// internal/collect/cache.go
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"agroscore/internal/common/logger"
	"agroscore/internal/common/metrics"
	"agroscore/internal/models"
)

// CachedImagery is a read-through Redis cache in front of an imagery source.
// Satellite observations for a fixed region and window do not change within
// the TTL, so repeated assessments of the same farm skip the catalog. Cache
// failures fall through to the underlying source and are never fatal.
type CachedImagery struct {
	next  ImagerySource
	redis *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCachedImagery(next ImagerySource, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedImagery {
	return &CachedImagery{next: next, redis: client, ttl: ttl, log: log}
}

// changePair is the cached shape for ChangePair results.
type changePair struct {
	Historical *models.VegetationSample `json:"historical"`
	Recent     *models.VegetationSample `json:"recent"`
}

func (c *CachedImagery) MonthlySeries(ctx context.Context, region models.Region, months int) (*models.TemporalSeries, error) {
	key := fmt.Sprintf("imagery:series:%.4f:%.4f:%d", region.Latitude, region.Longitude, months)

	var cached models.TemporalSeries
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	series, err := c.next.MonthlySeries(ctx, region, months)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, series)
	return series, nil
}

func (c *CachedImagery) ChangePair(ctx context.Context, region models.Region, yearsBack int) (*models.VegetationSample, *models.VegetationSample, error) {
	key := fmt.Sprintf("imagery:pair:%.4f:%.4f:%d", region.Latitude, region.Longitude, yearsBack)

	var cached changePair
	if c.lookup(ctx, key, &cached) {
		return cached.Historical, cached.Recent, nil
	}

	historical, recent, err := c.next.ChangePair(ctx, region, yearsBack)
	if err != nil {
		return nil, nil, err
	}
	c.store(ctx, key, changePair{Historical: historical, Recent: recent})
	return historical, recent, nil
}

func (c *CachedImagery) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		metrics.ImageryCacheHits.WithLabelValues("miss").Inc()
		return false
	case err != nil:
		metrics.ImageryCacheHits.WithLabelValues("error").Inc()
		c.log.WithError(err).Warn("imagery cache unavailable, falling through", map[string]interface{}{"key": key})
		return false
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		metrics.ImageryCacheHits.WithLabelValues("error").Inc()
		c.log.WithError(err).Warn("corrupt imagery cache entry, refetching", map[string]interface{}{"key": key})
		return false
	}
	metrics.ImageryCacheHits.WithLabelValues("hit").Inc()
	return true
}

func (c *CachedImagery) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).Warn("failed to encode imagery cache entry", map[string]interface{}{"key": key})
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("failed to write imagery cache entry", map[string]interface{}{"key": key})
	}
}
