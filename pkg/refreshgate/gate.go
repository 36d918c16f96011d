// Package refreshgate implements a best-effort advisory gate that throttles
// duplicate refreshes across processes sharing a key-value store.
//
// A gate is not a lock. Two callers checking at nearly the same instant may
// both be allowed; the cost is one redundant refresh.
package refreshgate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maturity-dashboard/pkg/metrics"
)

// Store is the shared key-value store backing a Gate.
type Store interface {
	// SetNX stores value under key for ttl only if the key is absent.
	// It reports whether the value was stored.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type Gate struct {
	store  Store
	scope  string
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// New creates a gate for one operation scope (e.g. "manual", "digest").
func New(store Store, scope string, window time.Duration, logger *zap.Logger) *Gate {
	return &Gate{
		store:  store,
		scope:  scope,
		window: window,
		logger: logger,
		now:    time.Now,
	}
}

// Window returns the throttle window.
func (g *Gate) Window() time.Duration {
	return g.window
}

// Allow reports whether the caller should proceed with the refresh for key.
// It returns false if another caller refreshed key within the window.
// Store errors fail open.
func (g *Gate) Allow(ctx context.Context, key string) bool {
	storeKey := g.Key(key)
	ok, err := g.store.SetNX(ctx, storeKey, g.now().UTC().Format(time.RFC3339Nano), g.window)
	if err != nil {
		// 存储不可用时不阻止刷新
		g.logger.Warn("Refresh gate check failed, allowing refresh",
			zap.String("scope", g.scope),
			zap.String("key", storeKey),
			zap.Error(err),
		)
		metrics.IncrementRefreshGate(g.scope, "fail_open")
		return true
	}

	if !ok {
		g.logger.Debug("Refresh throttled",
			zap.String("scope", g.scope),
			zap.String("key", storeKey),
			zap.Duration("window", g.window),
		)
		metrics.IncrementRefreshGate(g.scope, "throttled")
		return false
	}

	metrics.IncrementRefreshGate(g.scope, "allowed")
	return true
}

// Release clears the mark left by Allow so a failed refresh of key can be
// retried before the window ends.
func (g *Gate) Release(ctx context.Context, key string) {
	storeKey := g.Key(key)
	if err := g.store.Del(ctx, storeKey); err != nil {
		// 释放失败只会让重试等到窗口结束
		g.logger.Warn("Refresh gate release failed",
			zap.String("scope", g.scope),
			zap.String("key", storeKey),
			zap.Error(err),
		)
		return
	}
	metrics.IncrementRefreshGate(g.scope, "released")
}

// Key returns the store key used for key.
func (g *Gate) Key(key string) string {
	return fmt.Sprintf("refresh:%s:%s", g.scope, key)
}
