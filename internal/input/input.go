// Package input adapts raw host events into simulation inputs.
//
// Hosts (terminal, window, scenario replay) push pointer, scroll and
// resize events at whatever rate they arrive; the helpers here bound how
// often they reach the simulation and normalise their values.
package input

import (
	"math"
	"time"
)

const (
	// OffCanvas is the pointer coordinate used when no pointer is present.
	// It lies outside every pointer effect radius.
	OffCanvas = -1e5

	MaxPixelRatio = 2.0

	ResizeDebounce = 150 * time.Millisecond
	ScrollThrottle = 50 * time.Millisecond
)

// Size is a viewport in CSS-style pixels plus its device pixel ratio.
type Size struct {
	Width, Height float64
	PixelRatio    float64
}

// PixelRatio clamps a device pixel ratio to [1, max].
func PixelRatio(dpr, max float64) float64 {
	if max <= 0 {
		max = MaxPixelRatio
	}
	if dpr < 1 || math.IsNaN(dpr) {
		return 1
	}
	return math.Min(dpr, max)
}

// Dispersion maps how far the host section has scrolled past the top of
// the viewport to [0, 1].
func Dispersion(offset, sectionHeight float64) float64 {
	if sectionHeight <= 0 || math.IsNaN(offset) {
		return 0
	}
	return math.Max(0, math.Min(1, offset/sectionHeight))
}

// Throttle passes a value through at most once per interval. Values offered
// inside the interval are held and released by Flush, so the latest value
// always lands eventually.
type Throttle[T any] struct {
	interval time.Duration
	last     time.Time
	fired    bool
	pending  T
	held     bool
}

func NewThrottle[T any](interval time.Duration) *Throttle[T] {
	return &Throttle[T]{interval: interval}
}

// Offer returns v and true when the interval has elapsed since the last
// release; otherwise v is held.
func (t *Throttle[T]) Offer(v T, now time.Time) (T, bool) {
	if !t.fired || now.Sub(t.last) >= t.interval {
		t.fired, t.last, t.held = true, now, false
		return v, true
	}
	t.pending, t.held = v, true
	var zero T
	return zero, false
}

// Flush releases the held value once the interval has elapsed.
func (t *Throttle[T]) Flush(now time.Time) (T, bool) {
	if t.held && now.Sub(t.last) >= t.interval {
		t.last, t.held = now, false
		return t.pending, true
	}
	var zero T
	return zero, false
}

// Debounce releases the most recent value once no new value has arrived
// for the wait period.
type Debounce[T any] struct {
	wait    time.Duration
	last    time.Time
	pending T
	held    bool
}

func NewDebounce[T any](wait time.Duration) *Debounce[T] {
	return &Debounce[T]{wait: wait}
}

// Push records v as the latest value.
func (d *Debounce[T]) Push(v T, now time.Time) {
	d.pending, d.last, d.held = v, now, true
}

// Ready returns the pending value once the wait has passed since the last Push.
func (d *Debounce[T]) Ready(now time.Time) (T, bool) {
	if d.held && now.Sub(d.last) >= d.wait {
		d.held = false
		return d.pending, true
	}
	var zero T
	return zero, false
}

// Pending reports whether a value is waiting.
func (d *Debounce[T]) Pending() bool { return d.held }
