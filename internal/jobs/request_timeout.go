package jobs

import (
	"context"
	"log"
	"time"

	"frontline/internal/services"
)

// requestExpirer is the slice of the request store the sweep needs.
type requestExpirer interface {
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RequestTimeoutJob expires stale Pending help requests. Every run issues one
// conditional UpdateMany: Pending requests created at or before now-threshold
// become Unresolved, with answer and resolvedAt left unset. A request a
// supervisor resolves between selection and write is excluded by the status
// condition, so the sweep never overwrites a resolution.
type RequestTimeoutJob struct {
	requests  requestExpirer
	schedule  string
	threshold time.Duration
	bus       *services.SessionBus
	metrics   *services.Metrics
}

// NewRequestTimeoutJob creates the sweep job. bus and metrics may be nil.
func NewRequestTimeoutJob(requests requestExpirer, schedule string, threshold time.Duration, bus *services.SessionBus, metrics *services.Metrics) *RequestTimeoutJob {
	return &RequestTimeoutJob{
		requests:  requests,
		schedule:  schedule,
		threshold: threshold,
		bus:       bus,
		metrics:   metrics,
	}
}

// Name implements Job.
func (j *RequestTimeoutJob) Name() string { return "request_timeout_sweep" }

// Schedule implements Job.
func (j *RequestTimeoutJob) Schedule() string { return j.schedule }

// Run expires every stale Pending request. Zero affected is a normal outcome.
func (j *RequestTimeoutJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.threshold)

	count, err := j.requests.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("❌ [TIMEOUT-SWEEP] Failed to expire stale requests: %v", err)
		return err
	}

	if count == 0 {
		log.Println("[TIMEOUT-SWEEP] No stale pending requests found")
		return nil
	}

	log.Printf("[TIMEOUT-SWEEP] Marked %d requests as Unresolved (older than %s)",
		count, cutoff.Format(time.RFC3339))

	if j.metrics != nil {
		j.metrics.Expirations.Add(float64(count))
	}
	if j.bus != nil {
		j.bus.Publish(services.Event{
			Type:    services.EventRequestExpired,
			Payload: map[string]interface{}{"count": count, "cutoff": cutoff},
		})
	}
	return nil
}
