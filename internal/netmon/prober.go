// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/config"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

const (
	defaultProbeInterval = 15 * time.Second
	defaultFailThreshold = 2
)

// Prober derives the connectivity signal from periodic pings against the
// remote store. One successful probe flips online; FailThreshold consecutive
// failures flip offline, so a single dropped request does not bounce the
// whole sync engine.
//
// The probe loop is idle until Start is called.
type Prober struct {
	*Manual

	pinger    Pinger
	interval  time.Duration
	threshold int

	// fails is touched only by the probe goroutine.
	fails int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *logger.Logger
}

// NewProber builds a prober over the given ping target. With
// cfg.StartOffline the monitor reports offline until the first successful
// probe.
func NewProber(pinger Pinger, cfg config.Netmon, log *logger.Logger) *Prober {
	interval := cfg.ProbeInterval
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	threshold := cfg.FailThreshold
	if threshold <= 0 {
		threshold = defaultFailThreshold
	}

	return &Prober{
		Manual:    NewManual(!cfg.StartOffline, log),
		pinger:    pinger,
		interval:  interval,
		threshold: threshold,
		logger:    log,
	}
}

// Start launches the probe loop. A previously running loop is stopped first.
// The loop exits when ctx is cancelled or Stop is called.
func (p *Prober) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	probeCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		// first verdict without waiting a full interval
		p.probe(probeCtx)

		t := time.NewTicker(p.interval)
		defer t.Stop()

		for {
			select {
			case <-probeCtx.Done():
				return
			case <-t.C:
				p.probe(probeCtx)
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has exited. Safe to call
// when the prober is not running.
func (p *Prober) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Prober) probe(ctx context.Context) {
	if err := p.pinger.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fails++
		p.logger.Debug().Err(err).Int("consecutive", p.fails).Msg("probe failed")
		if p.fails >= p.threshold {
			p.SetOnline(false)
		}
		return
	}

	p.fails = 0
	p.SetOnline(true)
}
