package export

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobTimeout bounds a single scheduled run.
const JobTimeout = 2 * time.Minute

// Scheduler runs jobs on cron expressions in UTC.
type Scheduler struct {
	c      *cron.Cron
	logger *logrus.Logger
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
	)
	return &Scheduler{c: c, logger: logger}
}

// Schedule registers fn under a standard five-field cron expression or a
// descriptor such as "@every 15m".
func (s *Scheduler) Schedule(expr string, fn func(ctx context.Context)) (cron.EntryID, error) {
	return s.c.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), JobTimeout)
		defer cancel()
		fn(ctx)
	})
}

// ScheduleExport runs e.Export on expr.
func (s *Scheduler) ScheduleExport(expr string, e *Exporter) (cron.EntryID, error) {
	return s.Schedule(expr, func(ctx context.Context) {
		_, _ = e.Export(ctx)
	})
}

func (s *Scheduler) Start() { s.c.Start() }

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}

func (s *Scheduler) Entries() []cron.Entry { return s.c.Entries() }
