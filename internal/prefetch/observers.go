package prefetch

import (
	"sync"
	"time"
)

// ViewportObserver is the handle the embedding UI drives for
// visibility-triggered prefetching. The UI owns the actual visibility
// source; it applies Margin as look-ahead and calls Intersect when the
// element is about to become visible. One-shot: the first intersection
// prefetches and disconnects.
type ViewportObserver struct {
	ElementID string
	Route     string
	// Margin is the look-ahead, in pixels, the UI applies when deciding
	// that the element is about to enter the viewport.
	Margin int

	mu      sync.Mutex
	done    bool
	service *Service
}

// Intersect reports that the element entered the (margin-extended) viewport.
// The first call prefetches the route immediately and disconnects; later
// calls are no-ops.
func (o *ViewportObserver) Intersect() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.mu.Unlock()

	o.service.removeObserver(o.ElementID, o)
	o.service.PrefetchRoute(o.Route, Options{When: Immediate})
}

// Disconnect stops the observer without prefetching. Idempotent.
func (o *ViewportObserver) Disconnect() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	o.mu.Unlock()

	o.service.removeObserver(o.ElementID, o)
}

// HoverObserver is the handle the embedding UI drives for hover-triggered
// prefetching. Enter arms the debounce timer and Leave cancels it; a timer
// that fires prefetches the route at high priority. Unlike the viewport
// observer it stays connected after firing; route idempotence makes repeat
// fires cheap.
type HoverObserver struct {
	ElementID string
	Route     string

	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	done    bool
	service *Service
}

// Enter reports the pointer entering the element. Re-entering restarts the
// debounce window.
func (o *HoverObserver) Enter() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.done {
		return
	}
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.debounce, o.fire)
}

// Leave reports the pointer leaving the element, cancelling an armed timer.
func (o *HoverObserver) Leave() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// Disconnect cancels any armed timer and detaches the observer. Idempotent.
func (o *HoverObserver) Disconnect() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.done = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.mu.Unlock()

	o.service.removeObserver(o.ElementID, o)
}

func (o *HoverObserver) fire() {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.timer = nil
	o.mu.Unlock()

	o.service.PrefetchRoute(o.Route, Options{Priority: PriorityHigh, When: Immediate})
}
