package dedup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Store is satisfied by refreshgate.RedisStore and refreshgate.MemoryStore.
type Store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

// Deduper drops redelivered events. The outbox dispatcher and the broker both
// deliver at least once.
type Deduper struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(store Store, ttl time.Duration, logger *zap.Logger) *Deduper {
	return &Deduper{store: store, ttl: ttl, logger: logger}
}

// AcquireOnce returns true the first time handler sees eventID and false for
// duplicates.
func (d *Deduper) AcquireOnce(ctx context.Context, handler, eventID string) bool {
	if eventID == "" {
		return true
	}
	key := dedupKey(handler, eventID)

	ok, err := d.store.SetNX(ctx, key, "1", d.ttl)
	if err != nil {
		// Redis 不可用时不阻止处理
		d.logger.Warn("Dedup check failed, allowing processing",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Skipped duplicated event",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.String("dedup_key", key),
		)
	}
	return ok
}

// Release forgets eventID so a redelivery after a failed attempt is processed.
func (d *Deduper) Release(ctx context.Context, handler, eventID string) {
	if eventID == "" {
		return
	}
	if err := d.store.Del(ctx, dedupKey(handler, eventID)); err != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("handler", handler),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}

func dedupKey(handler, eventID string) string {
	return fmt.Sprintf("dedup:%s:%s", handler, eventID)
}
