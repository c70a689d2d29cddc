// Package scheduler provides the two task lanes the prefetch layer runs on:
// an immediate lane and an idle lane that yields to foreground work.
package scheduler

import "time"

//go:generate mockgen -source=interfaces.go -destination=../mock/scheduler_mock.go -package=mock

// Scheduler runs tasks on a single background worker with two priorities.
type Scheduler interface {
	// RunNow queues task on the immediate lane. Immediate tasks run in
	// submission order, ahead of any idle task that is not yet overdue.
	RunNow(task func())

	// RunWhenIdle queues task on the idle lane. The task becomes eligible
	// once the idle delay has passed and the immediate lane is empty, and is
	// force-run when timeout expires even if immediate work keeps arriving.
	// A non-positive timeout, or one beyond the configured maximum, uses the
	// maximum.
	RunWhenIdle(task func(), timeout time.Duration)

	// Close stops the worker. The running task finishes; queued tasks are
	// dropped. Close is idempotent and safe to call concurrently.
	Close()
}
