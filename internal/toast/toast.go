// Package toast holds the single transient notification shown to the user.
package toast

import (
	"sync"
	"time"
)

// Kind classifies a toast.
type Kind string

const (
	Info    Kind = "info"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 2500 * time.Millisecond

// Toast is a short-lived user notification.
type Toast struct {
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// Listener is notified with the new toast on show, and with nil on expiry.
type Listener func(t *Toast)

// Register is a single-slot toast holder. Showing a toast replaces the
// previous one and restarts the expiry timer; a timer belonging to a replaced
// toast never clears its successor.
type Register struct {
	mu       sync.Mutex
	duration time.Duration
	current  *Toast
	timer    *time.Timer
	gen      uint64
	listener Listener
}

// NewRegister creates a register whose toasts expire after d. Durations
// outside [2.5s, 3s] are clamped; tests may use NewRegisterExact.
func NewRegister(d time.Duration) *Register {
	switch {
	case d <= 0:
		d = DefaultDuration
	case d < 2500*time.Millisecond:
		d = 2500 * time.Millisecond
	case d > 3*time.Second:
		d = 3 * time.Second
	}
	return &Register{duration: d}
}

// NewRegisterExact creates a register with an unclamped expiry duration.
func NewRegisterExact(d time.Duration) *Register {
	return &Register{duration: d}
}

// OnChange installs the listener. It is called without the register lock held.
func (r *Register) OnChange(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = l
}

// Show replaces the current toast.
func (r *Register) Show(message string, kind Kind) {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	gen := r.gen
	t := &Toast{Message: message, Kind: kind}
	r.current = t
	r.timer = time.AfterFunc(r.duration, func() { r.expire(gen) })
	l := r.listener
	r.mu.Unlock()

	if l != nil {
		c := *t
		l(&c)
	}
}

// Current returns the visible toast, or nil.
func (r *Register) Current() *Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	c := *r.current
	return &c
}

// Duration returns the expiry duration.
func (r *Register) Duration() time.Duration {
	return r.duration
}

// Dismiss clears the toast and cancels its timer.
func (r *Register) Dismiss() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
	had := r.current != nil
	r.current = nil
	l := r.listener
	r.mu.Unlock()

	if had && l != nil {
		l(nil)
	}
}

func (r *Register) expire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	r.current = nil
	r.timer = nil
	l := r.listener
	r.mu.Unlock()

	if l != nil {
		l(nil)
	}
}
