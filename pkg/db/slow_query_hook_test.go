package db

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOperationOf(t *testing.T) {
	assert.Equal(t, "select", operationOf("\n  SELECT id FROM projects"))
	assert.Equal(t, "update", operationOf("update milestones set status = $1"))
	assert.Equal(t, "other", operationOf("LISTEN foo"))
	assert.Equal(t, "unknown", operationOf("   "))
}

func TestSlowQueryTracer_LogsOnlySlowQueries(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), 50*time.Millisecond)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracer.now = func() time.Time { return clock }

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	clock = clock.Add(10 * time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	assert.Equal(t, 0, logs.Len())

	ctx = tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT   pg_sleep(1)"})
	clock = clock.Add(time.Second)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{})
	if assert.Equal(t, 1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(t, "slow-query", entry.Message)
		assert.Equal(t, "SELECT pg_sleep(1)", entry.ContextMap()["sql"])
	}
}

func TestSlowQueryTracer_IgnoresContextWithoutStart(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracer := NewSlowQueryTracer(zap.New(core), 0)
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	assert.Equal(t, 0, logs.Len())
}
