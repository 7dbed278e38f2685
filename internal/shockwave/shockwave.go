// Package shockwave tracks transient click impulses.
package shockwave

import "time"

const (
	DefaultLifetime = 400 * time.Millisecond

	// MaxLive bounds the registry; the oldest entry is evicted first.
	MaxLive = 64
)

// Shockwave is an impulse origin created at Born.
type Shockwave struct {
	X, Y float64
	Born time.Time
}

// Registry holds live shockwaves in creation order.
type Registry struct {
	lifetime time.Duration
	max      int
	live     []Shockwave
}

// NewRegistry creates a registry whose entries expire after lifetime.
func NewRegistry(lifetime time.Duration) *Registry {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Registry{
		lifetime: lifetime,
		max:      MaxLive,
		live:     make([]Shockwave, 0, 8),
	}
}

// Trigger appends a shockwave at (x, y).
func (r *Registry) Trigger(x, y float64, now time.Time) {
	if len(r.live) >= r.max {
		copy(r.live, r.live[1:])
		r.live = r.live[:len(r.live)-1]
	}
	r.live = append(r.live, Shockwave{X: x, Y: y, Born: now})
}

// Prune drops every shockwave older than the lifetime.
func (r *Registry) Prune(now time.Time) {
	kept := r.live[:0]
	for _, sw := range r.live {
		if now.Sub(sw.Born) <= r.lifetime {
			kept = append(kept, sw)
		}
	}
	clear(r.live[len(kept):])
	r.live = kept
}

// Live returns the current entries. The slice is only valid until the
// next Trigger or Prune.
func (r *Registry) Live() []Shockwave { return r.live }

func (r *Registry) Len() int                { return len(r.live) }
func (r *Registry) Lifetime() time.Duration { return r.lifetime }

// Reset removes every entry.
func (r *Registry) Reset() {
	r.live = r.live[:0]
}
