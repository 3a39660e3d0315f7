// Package cache provides the Redis-backed suggested feed cache. Every miss
// or Redis failure degrades to a recompute, never to a request failure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/trellis/pkg/models"
	"github.com/Ramsey-B/trellis/pkg/redis"
)

// FeedCache stores the full enriched, unfiltered feed per company. Filters,
// sorts, and topN are applied after load, so one key per company is enough
// and invalidation stays a single delete.
type FeedCache struct {
	client  *redis.Client
	ttl     time.Duration
	enabled bool
	logger  ectologger.Logger
}

// NewFeedCache creates a feed cache. A nil client disables caching entirely,
// which keeps call sites free of nil checks.
func NewFeedCache(client *redis.Client, ttl time.Duration, enabled bool, logger ectologger.Logger) *FeedCache {
	return &FeedCache{
		client:  client,
		ttl:     ttl,
		enabled: enabled && client != nil,
		logger:  logger,
	}
}

func feedKey(companyID int64) string {
	return fmt.Sprintf("trellis:feed:%d", companyID)
}

// Get returns the cached feed for a company and whether it was present
func (c *FeedCache) Get(ctx context.Context, companyID int64) (*models.SuggestedFeedResponse, bool) {
	if !c.enabled {
		return nil, false
	}

	raw, err := c.client.Get(ctx, feedKey(companyID))
	if err != nil {
		return nil, false
	}

	var feed models.SuggestedFeedResponse
	if err := json.Unmarshal([]byte(raw), &feed); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": companyID}).Warn("Corrupt feed cache entry; dropping")
		_ = c.client.Del(ctx, feedKey(companyID))
		return nil, false
	}

	return &feed, true
}

// Set stores the feed for a company with the configured TTL
func (c *FeedCache) Set(ctx context.Context, companyID int64, feed *models.SuggestedFeedResponse) {
	if !c.enabled || feed == nil {
		return
	}

	data, err := json.Marshal(feed)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": companyID}).Warn("Failed to serialize feed for cache")
		return
	}

	if err := c.client.Set(ctx, feedKey(companyID), data, c.ttl); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": companyID}).Warn("Failed to cache feed")
	}
}

// Invalidate drops the cached feed for a company. Called whenever the inputs
// of the feed change: refresh, orbit upload, network clear.
func (c *FeedCache) Invalidate(ctx context.Context, companyID int64) {
	if !c.enabled {
		return
	}

	if err := c.client.Del(ctx, feedKey(companyID)); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"company_id": companyID}).Warn("Failed to invalidate feed cache")
	}
}
