// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/logger"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run was called.
type mockWorker struct {
	runCount int
}

func (m *mockWorker) Run() {
	m.runCount++
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := New(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := New()

	// Should not panic on empty workers list
	ws.Run()
	ws.Stop()
}

func TestWorkers_Run_Nil(t *testing.T) {
	ws := &Workers{}

	// Should not panic when workers field is nil
	ws.Run()
	ws.Stop()
}

func TestWorkers_Run_Order(t *testing.T) {
	order := []int{}

	newOrderWorker := func(id int) Worker {
		return &orderWorker{id: id, order: &order}
	}

	ws := New(
		newOrderWorker(1),
		newOrderWorker(2),
		newOrderWorker(3),
	)
	ws.Run()

	expected := []int{1, 2, 3}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d]=%d, got %d", i, v, order[i])
		}
	}
}

func TestWorkers_Stop_ReverseOrderSkipsPlainWorkers(t *testing.T) {
	order := []int{}
	first := &stoppableWorker{id: 1, order: &order}
	plain := &mockWorker{}
	last := &stoppableWorker{id: 2, order: &order}

	ws := New(first, plain, last)
	ws.Run()
	ws.Stop()

	expected := []int{2, 1}
	if len(order) != len(expected) {
		t.Fatalf("expected %d stops, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected stop order[%d]=%d, got %d", i, v, order[i])
		}
	}
}

func TestPeriodic_RunsOnInterval(t *testing.T) {
	ran := make(chan struct{}, 8)
	p := NewPeriodic("tick", 5*time.Millisecond, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, logger.Nop())

	p.Run()
	defer p.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d never happened", i+1)
		}
	}
}

func TestPeriodic_KickTriggersRunBetweenTicks(t *testing.T) {
	ran := make(chan struct{}, 1)
	kick := make(chan struct{}, 1)

	// interval far beyond the test's lifetime, so only the kick can fire
	p := NewPeriodic("drain", time.Hour, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, logger.Nop()).WithKick(kick)

	p.Run()
	defer p.Stop()

	kick <- struct{}{}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("kick did not trigger a run")
	}
}

func TestPeriodic_StopHaltsLoop(t *testing.T) {
	var runs atomic.Int64
	p := NewPeriodic("tick", 2*time.Millisecond, func(context.Context) {
		runs.Add(1)
	}, logger.Nop())

	p.Run()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Fatal("worker never ran")
	}

	p.Stop()
	frozen := runs.Load()
	time.Sleep(20 * time.Millisecond)

	if got := runs.Load(); got != frozen {
		t.Errorf("worker kept running after Stop: %d -> %d", frozen, got)
	}
}

func TestPeriodic_StopWithoutRun(t *testing.T) {
	p := NewPeriodic("idle", time.Second, func(context.Context) {}, logger.Nop())

	// Should not panic when the worker was never started
	p.Stop()
	p.Stop()
}

func TestPeriodic_RunIsIdempotent(t *testing.T) {
	ran := make(chan struct{}, 2)
	kick := make(chan struct{}, 1)
	p := NewPeriodic("drain", time.Hour, func(context.Context) {
		ran <- struct{}{}
	}, logger.Nop()).WithKick(kick)

	p.Run()
	p.Run()

	kick <- struct{}{}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("kick did not trigger a run")
	}

	p.Stop()

	// a leaked second loop would still answer kicks after Stop
	select {
	case kick <- struct{}{}:
	default:
	}
	select {
	case <-ran:
		t.Fatal("worker ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

// orderWorker is a helper that appends its ID to a shared slice on Run.
type orderWorker struct {
	id    int
	order *[]int
}

func (o *orderWorker) Run() {
	*o.order = append(*o.order, o.id)
}

// stoppableWorker records its ID on Stop to observe shutdown order.
type stoppableWorker struct {
	id    int
	order *[]int
}

func (s *stoppableWorker) Run() {}

func (s *stoppableWorker) Stop() {
	*s.order = append(*s.order, s.id)
}
