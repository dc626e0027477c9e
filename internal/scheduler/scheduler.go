// Package scheduler runs the daily background jobs on a cron timer in the
// configured timezone.
package scheduler

import (
	"context"
	stdlog "log"
	"time"

	"github.com/robfig/cron/v3"

	"dealcore/internal/log"
	"dealcore/internal/services"
)

// Jobs are the background operations the scheduler drives.
type Jobs struct {
	DealsOfTheDay *services.DealsOfTheDayService
	Reconcile     *services.ReconcileService
	Index         *services.IndexSync
}

type Spec struct {
	DealsOfTheDay string
	Reconcile     string
	Purge         string
}

type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	timeout time.Duration
}

// New registers every job. A run that is still going when its next tick fires
// is skipped, so no job overlaps itself.
func New(loc *time.Location, spec Spec, jobs Jobs) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(stdlog.Default()))),
	)
	s := &Scheduler{cron: c, jobs: jobs, timeout: time.Hour}
	if spec.Purge == "" {
		spec.Purge = "15 0 * * *"
	}
	entries := []struct {
		spec string
		run  func(context.Context)
	}{
		{spec.DealsOfTheDay, s.RunDealsOfTheDay},
		{spec.Reconcile, s.RunReconcile},
		{spec.Purge, s.RunPurge},
	}
	for _, e := range entries {
		run := e.run
		if _, err := c.AddFunc(e.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			run(ctx)
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the timer and waits for running jobs up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) RunDealsOfTheDay(ctx context.Context) {
	started := time.Now()
	res, err := s.jobs.DealsOfTheDay.Refresh(ctx)
	log.Job("job.deals_of_the_day", started, err, map[string]any{
		"date": res.Date, "deactivated": res.Deactivated, "inserted": res.Inserted,
	})
}

func (s *Scheduler) RunReconcile(ctx context.Context) {
	started := time.Now()
	res, err := s.jobs.Reconcile.Run(ctx)
	log.Job("job.reconcile", started, err, map[string]any{
		"scanned": res.Scanned, "owners": res.Owners, "changed": len(res.Changed), "patched": res.Patched,
	})
}

func (s *Scheduler) RunPurge(ctx context.Context) {
	started := time.Now()
	n, err := s.jobs.Index.PurgeExpired(ctx)
	log.Job("job.purge_deal_index", started, err, map[string]any{"removed": n})
}
