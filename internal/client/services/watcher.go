package services

import (
	"sync"
	"time"
)

// InactivityWatcher fires onExpire once the window passes without Reset.
// Every user interaction should call Reset; logout and shutdown call Stop.
type InactivityWatcher struct {
	window   time.Duration
	onExpire func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func NewInactivityWatcher(window time.Duration, onExpire func()) *InactivityWatcher {
	return &InactivityWatcher{window: window, onExpire: onExpire}
}

// Start arms the countdown, replacing any running one.
func (w *InactivityWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.armLocked()
}

// Reset restarts a running countdown; it does nothing when stopped.
func (w *InactivityWatcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer == nil {
		return
	}
	w.armLocked()
}

// Stop disarms the countdown. A callback already past its deadline check
// will not run.
func (w *InactivityWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

// Active reports whether a countdown is running.
func (w *InactivityWatcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.timer != nil
}

func (w *InactivityWatcher) armLocked() {
	w.stopLocked()
	if w.window <= 0 {
		return
	}
	gen := w.gen
	w.timer = time.AfterFunc(w.window, func() { w.fire(gen) })
}

func (w *InactivityWatcher) stopLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *InactivityWatcher) fire(gen uint64) {
	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.gen++
	w.mu.Unlock()

	if w.onExpire != nil {
		w.onExpire()
	}
}
