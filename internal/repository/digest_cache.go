package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"maturity-dashboard/internal/event"
)

// DigestCache stores the latest alert digest of each project in Redis.
type DigestCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDigestCache(rdb *redis.Client, ttl time.Duration) *DigestCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DigestCache{rdb: rdb, ttl: ttl}
}

func digestKey(tenantID, projectID int64) string {
	return fmt.Sprintf("digest:%d:%d", tenantID, projectID)
}

// Save overwrites the cached digest of the digest's project.
func (c *DigestCache) Save(ctx context.Context, d event.AlertsDigestPayload) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := c.rdb.Set(ctx, digestKey(d.TenantID, d.ProjectID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache digest: %w", err)
	}
	return nil
}

// Get returns the cached digest or ErrNotFound.
func (c *DigestCache) Get(ctx context.Context, tenantID, projectID int64) (*event.AlertsDigestPayload, error) {
	data, err := c.rdb.Get(ctx, digestKey(tenantID, projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read digest: %w", err)
	}

	var d event.AlertsDigestPayload
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode digest: %w", err)
	}
	return &d, nil
}
