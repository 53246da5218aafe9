package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a periodic maintenance task. Each job owns its cadence: Spec is a
// five-field cron expression (minute granularity).
type Job interface {
	Name() string
	Spec() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job) error
	Start(ctx context.Context)
	Stop()
}

type CronScheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
	}
}

func (c *CronScheduler) AddJob(job Job) error {
	name := job.Name()
	if _, ok := c.entries[name]; ok {
		return fmt.Errorf("job already scheduled: %s", name)
	}
	logger := logutil.GetLogger(context.Background()).With(
		zap.String("job", name),
		zap.String("spec", job.Spec()),
	)
	entryID, err := c.cron.AddFunc(job.Spec(), c.wrap(job))
	if err != nil {
		logger.Error("schedule maintenance job failed", zap.Error(err))
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	c.entries[name] = entryID
	logger.Info("maintenance job scheduled")
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx = ctx
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// wrap serializes runs of one job: a tick that fires while the previous run
// is still going is skipped, so a sweep crawling a large session backlog
// never stacks on itself.
func (c *CronScheduler) wrap(job Job) func() {
	var running atomic.Bool
	return func() {
		if !running.CompareAndSwap(false, true) {
			logutil.GetLogger(context.Background()).With(
				zap.String("job", job.Name()),
			).Info("maintenance tick skipped: previous run still going")
			return
		}
		defer running.Store(false)

		ctx := c.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		logger := logutil.GetLogger(ctx).With(zap.String("job", job.Name()))
		start := time.Now()
		err := job.Run(ctx)
		elapsed := time.Since(start)
		if err != nil {
			logger.Error("maintenance run failed", zap.Error(err), zap.Duration("duration", elapsed))
			return
		}
		logger.Info("maintenance run done", zap.Duration("duration", elapsed))
	}
}
