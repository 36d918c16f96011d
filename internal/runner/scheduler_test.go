package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingJob struct {
	runs    atomic.Int32
	err     error
	blockOn chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.blockOn != nil {
		select {
		case <-j.blockOn:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return j.err
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	job := &countingJob{err: errors.New("boom")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	job := &countingJob{blockOn: make(chan struct{})}
	require.NoError(t, s.AddJob("* * * * * *", job))

	s.Start()
	require.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after cancelling the job")
	}
	// 仍在运行的任务会跳过后续触发
	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	assert.Error(t, s.AddJob("every now and then", &countingJob{}))
	s.Stop()
}
