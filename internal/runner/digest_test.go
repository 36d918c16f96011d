package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"maturity-dashboard/internal/alerts"
	"maturity-dashboard/internal/event"
	"maturity-dashboard/internal/model"
	"maturity-dashboard/pkg/refreshgate"
	"maturity-dashboard/pkg/trace"
)

var now = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

type fakeProjects struct {
	refs []model.ProjectRef
	err  error
}

func (f fakeProjects) ListIDs(context.Context) ([]model.ProjectRef, error) {
	return f.refs, f.err
}

type fakePlans struct {
	byProject map[int64][]model.ActionPlan
	failOn    int64
}

func (f fakePlans) ListByProject(_ context.Context, projectID int64) ([]model.ActionPlan, error) {
	if projectID == f.failOn {
		return nil, errors.New("db timeout")
	}
	return f.byProject[projectID], nil
}

type memCache struct {
	mu    sync.Mutex
	saved []event.AlertsDigestPayload
}

func (c *memCache) Save(_ context.Context, d event.AlertsDigestPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, d)
	return nil
}

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) PublishWithContext(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{key: key, payload: payload})
	return nil
}

func day(offset int) time.Time {
	return now.AddDate(0, 0, offset)
}

func samplePlans() map[int64][]model.ActionPlan {
	return map[int64][]model.ActionPlan{
		10: {
			{ID: 1, DueDate: day(-2), PriorityLevel: 3, Status: model.WorkItemOpen},
			{ID: 2, DueDate: day(3), PriorityLevel: 3, Status: model.WorkItemInProgress},
			{ID: 3, DueDate: day(20), PriorityLevel: 1, Status: model.WorkItemOpen},
			{ID: 4, Status: model.WorkItemOpen},
			{ID: 5, DueDate: day(-1), Status: model.WorkItemCompleted},
		},
		20: {},
	}
}

type harness struct {
	gen   *DigestGenerator
	cache *memCache
	pub   *recordingPublisher
}

func newHarness(t *testing.T, plans fakePlans, refs []model.ProjectRef) harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := refreshgate.NewMemoryStore()
	h := harness{cache: &memCache{}, pub: &recordingPublisher{}}
	h.gen = NewDigestGenerator(
		fakeProjects{refs: refs},
		plans,
		h.cache,
		h.pub,
		refreshgate.New(store, "scan", time.Minute, log),
		refreshgate.New(store, "digest", time.Minute, log),
		alerts.DefaultConfig(),
		log,
	).WithClock(func() time.Time { return now })
	return h
}

func TestGenerate_CachesAndPublishesDigest(t *testing.T) {
	h := newHarness(t, fakePlans{byProject: samplePlans()}, nil)
	ctx := trace.WithContext(context.Background(), "trace-1")

	ok, err := h.gen.Generate(ctx, model.ProjectRef{TenantID: 1, ProjectID: 10}, TriggerEvent)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, h.cache.saved, 1)
	d := h.cache.saved[0]
	assert.Equal(t, int64(1), d.TenantID)
	assert.Equal(t, int64(10), d.ProjectID)
	assert.Equal(t, TriggerEvent, d.Trigger)
	assert.Equal(t, "trace-1", d.TraceID)
	assert.NotEmpty(t, d.EventID)
	assert.Equal(t, now, d.GeneratedAt)
	assert.Equal(t, event.DigestCounts{Total: 3, Overdue: 1, DueSoon: 1, HighPriority: 1, Dropped: 1}, d.Counts)

	require.Len(t, h.pub.msgs, 1)
	assert.Equal(t, event.AlertsDigest, h.pub.msgs[0].key)
	assert.Equal(t, d, h.pub.msgs[0].payload)
}

func TestGenerate_GatesPerTrigger(t *testing.T) {
	h := newHarness(t, fakePlans{byProject: samplePlans()}, nil)
	ctx := context.Background()
	ref := model.ProjectRef{TenantID: 1, ProjectID: 10}

	ok, err := h.gen.Generate(ctx, ref, TriggerEvent)
	require.NoError(t, err)
	assert.True(t, ok)

	// 同一窗口内第二次事件被节流
	ok, err = h.gen.Generate(ctx, ref, TriggerEvent)
	require.NoError(t, err)
	assert.False(t, ok)

	// 定时扫描使用独立的窗口
	ok, err = h.gen.Generate(ctx, ref, TriggerSchedule)
	require.NoError(t, err)
	assert.True(t, ok)

	// 手动刷新已在 API 侧节流
	for range 2 {
		ok, err = h.gen.Generate(ctx, ref, TriggerManual)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	assert.Len(t, h.cache.saved, 4)
}

func TestGenerate_ListFailure(t *testing.T) {
	h := newHarness(t, fakePlans{failOn: 10}, nil)

	ok, err := h.gen.Generate(context.Background(), model.ProjectRef{TenantID: 1, ProjectID: 10}, TriggerManual)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, h.cache.saved)
	assert.Empty(t, h.pub.msgs)
}

func TestGenerate_PublishFailure(t *testing.T) {
	h := newHarness(t, fakePlans{byProject: samplePlans()}, nil)
	h.pub.err = errors.New("channel closed")

	_, err := h.gen.Generate(context.Background(), model.ProjectRef{TenantID: 1, ProjectID: 20}, TriggerManual)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish digest")
	// 缓存先于发布写入
	assert.Len(t, h.cache.saved, 1)
}

func TestGenerate_FailedEventRefreshIsNotThrottled(t *testing.T) {
	h := newHarness(t, fakePlans{byProject: samplePlans()}, nil)
	ctx := context.Background()
	ref := model.ProjectRef{TenantID: 1, ProjectID: 10}

	h.pub.err = errors.New("channel closed")
	ok, err := h.gen.Generate(ctx, ref, TriggerEvent)
	require.Error(t, err)
	assert.False(t, ok)

	// broker 恢复后的重投不应被窗口拦截
	h.pub.err = nil
	ok, err = h.gen.Generate(ctx, ref, TriggerEvent)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, h.pub.msgs, 1)

	ok, err = h.gen.Generate(ctx, ref, TriggerEvent)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerate_FailedScanRefreshIsNotThrottled(t *testing.T) {
	plans := fakePlans{byProject: samplePlans(), failOn: 10}
	h := newHarness(t, plans, nil)
	ctx := context.Background()
	ref := model.ProjectRef{TenantID: 1, ProjectID: 10}

	_, err := h.gen.Generate(ctx, ref, TriggerSchedule)
	require.Error(t, err)

	h.gen.actionPlans = fakePlans{byProject: samplePlans()}
	ok, err := h.gen.Generate(ctx, ref, TriggerSchedule)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, h.cache.saved, 1)
}

func TestScanJob_ContinuesPastFailures(t *testing.T) {
	refs := []model.ProjectRef{
		{TenantID: 1, ProjectID: 10},
		{TenantID: 1, ProjectID: 99},
		{TenantID: 2, ProjectID: 20},
	}
	h := newHarness(t, fakePlans{byProject: samplePlans(), failOn: 99}, refs)
	job := NewScanJob(h.gen)

	assert.Equal(t, "alert-digest-scan", job.Name())
	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project 99")

	require.Len(t, h.cache.saved, 2)
	assert.Equal(t, int64(10), h.cache.saved[0].ProjectID)
	assert.Equal(t, int64(20), h.cache.saved[1].ProjectID)
	assert.Equal(t, TriggerSchedule, h.cache.saved[1].Trigger)
	assert.NotEmpty(t, h.cache.saved[0].TraceID)
	assert.Equal(t, h.cache.saved[0].TraceID, h.cache.saved[1].TraceID)

	// 成功的项目在扫描窗口内被节流，失败的项目会重试
	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project 99")
	assert.Len(t, h.cache.saved, 2)
}

func TestScanJob_ListFailure(t *testing.T) {
	h := newHarness(t, fakePlans{}, nil)
	h.gen.projects = fakeProjects{err: errors.New("db down")}

	err := NewScanJob(h.gen).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list projects")
}

func TestScanJob_StopsOnCancel(t *testing.T) {
	h := newHarness(t, fakePlans{byProject: samplePlans()}, []model.ProjectRef{{TenantID: 1, ProjectID: 10}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewScanJob(h.gen).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.cache.saved)
}
