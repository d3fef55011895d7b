// Package scheduler dispatches recurring syncs from database-stored cron
// schedules.
//
// Instead of registering every schedule with a live cron runner, a periodic
// scan picks up schedules whose next run is due. Due-ness survives process
// restarts: a schedule that became due while the process was down is
// dispatched once on the next scan, not once per missed occurrence.
package scheduler

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ekotlyar/kitsu-engine/internal/entities"
	"github.com/ekotlyar/kitsu-engine/internal/tasks"
)

// ScheduleStore is the schedule persistence the scanner needs.
type ScheduleStore interface {
	ListDue(now time.Time) ([]entities.ScheduledSync, error)
	Advance(id string, ranAt, nextRun time.Time) error
}

// JobCreator creates the job record a dispatched schedule runs under.
type JobCreator interface {
	Create(provider entities.SyncProvider, mode entities.SyncMode) (*entities.SyncJob, error)
}

// Scanner periodically scans for due schedules and dispatches them.
type Scanner struct {
	schedules  ScheduleStore
	jobs       JobCreator
	dispatcher tasks.Dispatcher
	interval   time.Duration

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewScanner creates a scanner with the given scan interval.
func NewScanner(schedules ScheduleStore, jobs JobCreator, dispatcher tasks.Dispatcher, interval time.Duration) *Scanner {
	return &Scanner{
		schedules:  schedules,
		jobs:       jobs,
		dispatcher: dispatcher,
		interval:   interval,
	}
}

// Start runs the scan loop until the context is cancelled. An initial scan
// runs immediately so schedules that came due while the process was down
// are recovered without waiting a full interval.
func (s *Scanner) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	log.Printf("Schedule scanner started, interval %s", s.interval)
	go func() {
		s.RunScan(time.Now())
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("Schedule scanner stopped")
				return
			case now := <-ticker.C:
				s.RunScan(now)
			}
		}
	}()
}

// Stop cancels the scan loop.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.isRunning = false
}

// RunScan dispatches every schedule due at now, exactly once each: the
// schedule advances before the next scan can see it again.
func (s *Scanner) RunScan(now time.Time) {
	due, err := s.schedules.ListDue(now)
	if err != nil {
		log.Printf("Scheduler: failed to list due schedules: %v", err)
		return
	}

	for _, schedule := range due {
		job, err := s.jobs.Create(schedule.Provider, schedule.Mode)
		if err != nil {
			log.Printf("Scheduler: failed to create job for schedule %s: %v", schedule.ID, err)
			continue
		}
		if err := s.dispatcher.DispatchSync(job); err != nil {
			log.Printf("Scheduler: failed to dispatch schedule %s: %v", schedule.ID, err)
			continue
		}

		next := NextRun(schedule.CronExpression, now)
		if err := s.schedules.Advance(schedule.ID, now, next); err != nil {
			log.Printf("Scheduler: failed to advance schedule %s: %v", schedule.ID, err)
			continue
		}
		log.Printf("Scheduler: dispatched %s %s sync as job %s, next run %s",
			schedule.Provider, schedule.Mode, job.ID, next.Format(time.RFC3339))
	}
}

// NextRun computes the next occurrence of a standard five-field cron
// expression after base. An unparsable expression falls back to interval
// heuristics so a bad schedule degrades instead of stalling.
func NextRun(expr string, base time.Time) time.Time {
	schedule, err := cron.ParseStandard(expr)
	if err == nil {
		return schedule.Next(base)
	}
	log.Printf("Scheduler: unparsable cron expression %q, using heuristic: %v", expr, err)
	return heuristicNext(expr, base)
}

func heuristicNext(expr string, base time.Time) time.Time {
	switch {
	case strings.Contains(expr, "*/30"):
		return base.Add(30 * time.Minute)
	case strings.Contains(expr, "*/15"):
		return base.Add(15 * time.Minute)
	case strings.Contains(expr, "*/60"), strings.HasPrefix(expr, "0 * * * *"):
		return base.Add(time.Hour)
	case strings.HasPrefix(expr, "0 0") && strings.Contains(expr, "* * *"):
		midnight := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
		return midnight.AddDate(0, 0, 1)
	default:
		return base.Add(time.Hour)
	}
}
