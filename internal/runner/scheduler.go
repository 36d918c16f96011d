package runner

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler runs jobs on cron schedules. A run still in progress when its
// next tick fires is skipped.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewScheduler(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		log:    log.With(zap.String("component", "scheduler")),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers job with a cron schedule, e.g. "0 */5 * * * *" or "@every 5m".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug("Running job", zap.String("job", job.Name()))
		if err := job.Run(s.ctx); err != nil {
			s.log.Error("Job failed", zap.String("job", job.Name()), zap.Error(err))
			return
		}
		s.log.Debug("Job completed", zap.String("job", job.Name()))
	})
	if err != nil {
		return err
	}

	s.log.Info("Job registered", zap.String("schedule", schedule), zap.String("job", job.Name()))
	return nil
}
