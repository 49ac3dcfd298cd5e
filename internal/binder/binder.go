// Package binder coordinates address form field groups: it debounces field
// edits, issues at most one address lookup per group, cancels superseded
// requests, and reconciles fetched values against what the user already
// typed. Field handles, the lookup transport, and the confirmation prompt
// are external collaborators.
package binder

import (
	"sync"
	"time"

	"addressfill_backend/platform/events"
	"addressfill_backend/platform/logger"
)

// DefaultDebounceInterval is the quiet period after the last edit before a
// group is evaluated.
const DefaultDebounceInterval = 250 * time.Millisecond

// Binder owns the group registry and runs the lookup coordination state
// machine. A single mutex serializes all group state transitions; blocking
// work (the lookup transport, field writes, the confirmation prompt) runs
// outside the lock.
type Binder struct {
	mu     sync.Mutex
	groups map[string]*Group

	lookup    Lookup
	confirmer Confirmer
	bus       events.Bus
	log       *logger.Logger
	debounce  time.Duration
}

// New creates a Binder. A zero debounce falls back to the default interval.
func New(lookup Lookup, confirmer Confirmer, bus events.Bus, log *logger.Logger, debounce time.Duration) *Binder {
	if debounce <= 0 {
		debounce = DefaultDebounceInterval
	}
	return &Binder{
		groups:    make(map[string]*Group),
		lookup:    lookup,
		confirmer: confirmer,
		bus:       bus,
		log:       log,
		debounce:  debounce,
	}
}

// Bind attaches a field handle to a group under the given role, creating
// the group on first sighting. Binding a role twice replaces the handle.
func (b *Binder) Bind(groupID string, role Role, field Field) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.groupOrCreate(groupID)
	g.fields[role] = field
	// a previously missing required role may have just appeared
	if len(g.missingRequired()) == 0 {
		g.missingReported = false
	}
}

// FieldEdited notes an edit in the group and (re)starts its debounce
// timer. Any previously scheduled evaluation is cancelled first, so a
// burst of edits coalesces into a single evaluation after the quiet
// period. Edits caused by the binder's own field writes are suppressed by
// the applying guard.
func (b *Binder) FieldEdited(groupID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.group(groupID)
	if !ok || g.applying {
		return
	}

	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(b.debounce, func() {
		b.Evaluate(groupID)
	})
}
