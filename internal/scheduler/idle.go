// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package scheduler

import (
	"sync"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// immediateQueueSize bounds the immediate lane. Prefetch traffic is light;
// the buffer only exists so RunNow does not block while the worker is busy.
const immediateQueueSize = 128

type idleTask struct {
	fn         func()
	eligibleAt time.Time // submission time plus the idle delay
	deadline   time.Time // force-run time
}

// IdleScheduler runs all tasks on one worker goroutine. Immediate tasks go
// first; idle tasks wait for a quiet moment but are never starved past their
// deadline.
type IdleScheduler struct {
	idleDelay   time.Duration
	maxIdleWait time.Duration

	immediate chan func()

	mu   sync.Mutex
	idle []idleTask

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger *logger.Logger
}

// NewIdleScheduler starts the worker. idleDelay is how long an idle task
// waits before becoming eligible; maxIdleWait caps how long it can be
// deferred in total.
func NewIdleScheduler(idleDelay, maxIdleWait time.Duration, log *logger.Logger) *IdleScheduler {
	if idleDelay <= 0 {
		idleDelay = time.Second
	}
	if maxIdleWait <= 0 {
		maxIdleWait = 2 * time.Second
	}

	s := &IdleScheduler{
		idleDelay:   idleDelay,
		maxIdleWait: maxIdleWait,
		immediate:   make(chan func(), immediateQueueSize),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		logger:      log.Component("scheduler"),
	}

	s.wg.Add(1)
	go s.loop()

	return s
}

// RunNow queues task on the immediate lane. After Close the task is dropped.
func (s *IdleScheduler) RunNow(task func()) {
	if task == nil {
		return
	}

	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.immediate <- task:
	case <-s.done:
	}
}

// RunWhenIdle queues task on the idle lane with the given deadline budget.
func (s *IdleScheduler) RunWhenIdle(task func(), timeout time.Duration) {
	if task == nil {
		return
	}
	if timeout <= 0 || timeout > s.maxIdleWait {
		timeout = s.maxIdleWait
	}

	select {
	case <-s.done:
		return
	default:
	}

	now := time.Now()
	s.mu.Lock()
	s.idle = append(s.idle, idleTask{
		fn:         task,
		eligibleAt: now.Add(s.idleDelay),
		deadline:   now.Add(timeout),
	})
	s.mu.Unlock()

	// Nudge the worker out of its sleep; a pending nudge is enough.
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker and waits for the task in flight to finish.
func (s *IdleScheduler) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()

	s.mu.Lock()
	dropped := len(s.idle)
	s.idle = nil
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Debug().Int("dropped", dropped).Msg("idle tasks dropped on close")
	}
}

func (s *IdleScheduler) loop() {
	defer s.wg.Done()

	for {
		// Overdue idle tasks outrank everything, including immediate work.
		if fn, ok := s.takeIdle(true); ok {
			fn()
			continue
		}

		select {
		case fn := <-s.immediate:
			fn()
			continue
		case <-s.done:
			return
		default:
		}

		// Immediate lane is empty: idle tasks past their delay may run.
		if fn, ok := s.takeIdle(false); ok {
			fn()
			continue
		}

		wait, ok := s.nextWake()
		if !ok {
			select {
			case fn := <-s.immediate:
				fn()
			case <-s.wake:
			case <-s.done:
				return
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case fn := <-s.immediate:
			timer.Stop()
			fn()
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		case <-s.done:
			timer.Stop()
			return
		}
	}
}

// takeIdle pops a runnable idle task. With overdueOnly it returns the task
// whose deadline expired earliest; otherwise the first eligible task in
// submission order.
func (s *IdleScheduler) takeIdle(overdueOnly bool) (func(), bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.idle {
		if overdueOnly {
			if now.Before(t.deadline) {
				continue
			}
			if idx == -1 || t.deadline.Before(s.idle[idx].deadline) {
				idx = i
			}
		} else if !now.Before(t.eligibleAt) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}

	fn := s.idle[idx].fn
	s.idle = append(s.idle[:idx], s.idle[idx+1:]...)
	return fn, true
}

// nextWake returns how long the worker may sleep before some idle task needs
// another look. False means the idle lane is empty.
func (s *IdleScheduler) nextWake() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.idle) == 0 {
		return 0, false
	}

	var next time.Time
	for _, t := range s.idle {
		at := t.eligibleAt
		if t.deadline.Before(at) {
			at = t.deadline
		}
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}

	wait := time.Until(next)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}
