package cart

import (
	"sync"
	"time"
)

// Autosaver debounces a save callback: every Touch re-arms the timer, and the
// callback runs once the edits have been quiet for the delay.
type Autosaver struct {
	delay time.Duration
	save  func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	stopped bool
}

func NewAutosaver(delay time.Duration, save func()) *Autosaver {
	return &Autosaver{delay: delay, save: save}
}

func (a *Autosaver) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = true
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	if !a.pending || a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.mu.Unlock()
	a.save()
}

// Flush runs a pending save immediately. It reports whether one was pending.
func (a *Autosaver) Flush() bool {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending && !a.stopped
	a.pending = false
	a.mu.Unlock()
	if pending {
		a.save()
	}
	return pending
}

// Stop drops any pending save and ignores later touches.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	a.pending = false
	if a.timer != nil {
		a.timer.Stop()
	}
}
