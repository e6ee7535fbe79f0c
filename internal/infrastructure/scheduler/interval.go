package scheduler

import (
	"context"
	"time"

	"ShutdownScanner/internal/ports"
)

// IntervalScheduler triggers the job immediately and then on a fixed period.
type IntervalScheduler struct {
	every time.Duration
	stop  chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler with the given period.
func NewIntervalScheduler(every time.Duration) *IntervalScheduler {
	if every <= 0 {
		every = time.Hour
	}
	return &IntervalScheduler{every: every}
}

// Start begins ticking; the first run happens right away.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
