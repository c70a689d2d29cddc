package workers

import (
	"context"
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// Periodic adapts a function into a Worker that runs it on a fixed interval
// until stopped. An optional kick channel triggers an extra run between
// ticks; the sync coordinator uses it to drain right after a write is
// enqueued or connectivity returns instead of waiting out the interval.
type Periodic struct {
	name     string
	interval time.Duration
	fn       func(context.Context)
	kick     <-chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewPeriodic builds a periodic worker. fn must respect ctx cancellation;
// it is never invoked concurrently with itself.
func NewPeriodic(name string, interval time.Duration, fn func(context.Context), log *logger.Logger) *Periodic {
	return &Periodic{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   log,
	}
}

// WithKick sets the channel whose signals trigger runs between ticks. Must
// be called before Run.
func (p *Periodic) WithKick(kick <-chan struct{}) *Periodic {
	p.kick = kick
	return p
}

// Run starts the loop. Calling Run on a running worker is a no-op.
func (p *Periodic) Run() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Debug().Str("worker", p.name).Dur("interval", p.interval).Msg("worker started")
}

// Stop cancels the loop and waits for the in-flight run to return. Safe to
// call on a worker that was never started.
func (p *Periodic) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.wg.Wait()

	p.logger.Debug().Str("worker", p.name).Msg("worker stopped")
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		// a nil kick channel blocks forever, so the select degrades to
		// ticker-only when no kick is configured
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fn(ctx)
		case <-p.kick:
			p.fn(ctx)
		}
	}
}
