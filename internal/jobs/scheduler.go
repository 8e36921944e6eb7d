package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

// Job is a named unit of recurring background work.
type Job interface {
	Name() string
	Schedule() string // five-field cron spec
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]Job
}

// NewScheduler creates a scheduler in UTC.
func NewScheduler() (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create job scheduler: %w", err)
	}
	return &Scheduler{
		scheduler: scheduler,
		jobs:      make(map[string]Job),
	}, nil
}

// Register validates the job's cron spec and adds it to the scheduler.
func (s *Scheduler) Register(job Job) error {
	if _, err := cron.ParseStandard(job.Schedule()); err != nil {
		return fmt.Errorf("invalid cron spec %q for job %s: %w", job.Schedule(), job.Name(), err)
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(job.Schedule(), false),
		gocron.NewTask(func() {
			start := time.Now()
			if err := job.Run(context.Background()); err != nil {
				log.Printf("❌ [SCHEDULER] Job %s failed: %v", job.Name(), err)
				return
			}
			log.Printf("✅ [SCHEDULER] Job %s completed in %v", job.Name(), time.Since(start))
		}),
		gocron.WithName(job.Name()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
	}

	s.jobs[job.Name()] = job
	log.Printf("⏰ [SCHEDULER] Registered job %s (%s)", job.Name(), job.Schedule())
	return nil
}

// Start begins running all registered jobs.
func (s *Scheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Started with %d jobs", len(s.jobs))
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if err := s.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop job scheduler: %w", err)
	}
	log.Println("🛑 [SCHEDULER] Stopped")
	return nil
}

// RunNow runs a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	return job.Run(ctx)
}
