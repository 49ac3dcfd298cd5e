package binder

import (
	"context"
	"time"
)

// lookupRequest describes one in-flight lookup. The signature identifies
// the query; cancel aborts the transport call. The slot holding a request
// is cleared only by that request's own completion.
type lookupRequest struct {
	signature string
	cancel    context.CancelFunc
}

// Group is the per-address-group state record. All fields are guarded by
// the binder mutex except during an applying run, which snapshots what it
// needs before releasing the lock.
type Group struct {
	ID     string
	fields map[Role]Field

	// debounce timer; replaced (previous stopped) on every new edit
	timer *time.Timer

	// at most one active lookup
	inFlight *lookupRequest

	// signature of the most recently completed lookup
	lastCompletedSignature string

	// signature of the most recently declined suggestion set
	lastDeclinedSignature string

	// reentrancy guard: true while fetched values are written back
	applying bool

	// whether the missing-required-roles diagnostic has been emitted
	missingReported bool
}

func newGroup(id string) *Group {
	return &Group{
		ID:     id,
		fields: make(map[Role]Field),
	}
}

// missingRequired returns the required roles not yet bound to a usable field.
func (g *Group) missingRequired() []string {
	var missing []string
	for _, role := range requiredRoles {
		f, ok := g.fields[role]
		if !ok || f == nil || !f.Present() {
			missing = append(missing, string(role))
		}
	}
	return missing
}

// group looks up an existing group. Caller must hold the binder mutex.
func (b *Binder) group(groupID string) (*Group, bool) {
	g, ok := b.groups[groupID]
	return g, ok
}

// groupOrCreate lazily creates the group on first sighting of any of its
// fields. Groups live for the life of the process and are never destroyed;
// their field handles may go absent instead. Caller must hold the binder
// mutex.
func (b *Binder) groupOrCreate(groupID string) *Group {
	if g, ok := b.groups[groupID]; ok {
		return g
	}
	g := newGroup(groupID)
	b.groups[groupID] = g
	return g
}
