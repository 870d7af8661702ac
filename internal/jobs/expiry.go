// Package jobs runs background sweeps on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"secondserving/internal/logging"
)

const sweepTimeout = time.Minute

// ExpiryRejector rejects pending donations whose food has expired.
type ExpiryRejector interface {
	RejectExpired(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the expiry sweep on schedule, which accepts the
// standard five-field syntax and descriptors such as "@every 15m".
func NewScheduler(schedule string, rejector ExpiryRejector) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { SweepExpired(context.Background(), rejector) }); err != nil {
		return nil, fmt.Errorf("schedule expiry sweep %q: %w", schedule, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// SweepExpired runs one expiry pass and logs the outcome.
func SweepExpired(ctx context.Context, rejector ExpiryRejector) int {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	log := logging.For(logging.Jobs)
	n, err := rejector.RejectExpired(ctx)
	if err != nil {
		log.WithError(err).Error("expiry sweep failed")
		return n
	}
	if n > 0 {
		log.WithField("rejected", n).Info("expired donations rejected")
	}
	return n
}
