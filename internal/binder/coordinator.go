package binder

import (
	"context"
	"errors"
	"strings"

	"addressfill_backend/platform/normalize"
)

// Evaluate decides whether the group needs a lookup and issues one if so.
// Every unmet precondition is a silent no-op: missing or malformed input is
// the normal steady state while the user is still typing, and a duplicate
// signature means there is nothing new to fetch.
func (b *Binder) Evaluate(groupID string) {
	b.mu.Lock()

	g, ok := b.group(groupID)
	if !ok || g.applying {
		b.mu.Unlock()
		return
	}

	if missing := g.missingRequired(); len(missing) > 0 {
		if !g.missingReported {
			g.missingReported = true
			b.log.MissingRequiredRoles(groupID, missing)
		}
		b.mu.Unlock()
		return
	}

	postcodeRaw := g.fields[RolePostalCode].Value()
	number := strings.TrimSpace(g.fields[RoleNumber].Value())
	if number == "" {
		b.mu.Unlock()
		return
	}
	if !normalize.ValidPostcode(postcodeRaw) {
		b.mu.Unlock()
		return
	}
	postcode := normalize.Postcode(postcodeRaw)

	signature := postcode + "|" + number

	// identical lookup already running
	if g.inFlight != nil && g.inFlight.signature == signature {
		b.mu.Unlock()
		return
	}
	// nothing changed since the last completed lookup
	if g.lastCompletedSignature == signature {
		b.mu.Unlock()
		return
	}

	// newest query wins: abort a differing in-flight lookup before
	// starting the new one
	if g.inFlight != nil {
		g.inFlight.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := &lookupRequest{signature: signature, cancel: cancel}
	g.inFlight = req
	b.mu.Unlock()

	go b.runLookup(ctx, groupID, req, postcode, number)
}

// runLookup performs the transport call and settles the in-flight slot.
// The slot is cleared exactly once, here, and only if it still references
// this request; a superseded lookup must not touch the slot a newer one
// now owns.
func (b *Binder) runLookup(ctx context.Context, groupID string, req *lookupRequest, postcode, number string) {
	data, err := b.lookup.Lookup(ctx, postcode, number)

	b.mu.Lock()
	g, ok := b.group(groupID)
	if !ok {
		b.mu.Unlock()
		return
	}
	owned := g.inFlight == req
	if owned {
		g.inFlight = nil
	}

	if err != nil {
		b.mu.Unlock()
		if errors.Is(err, context.Canceled) {
			return
		}
		b.log.LookupFailed(groupID, req.signature, err)
		b.publishLookupFailed(groupID, req.signature, err)
		return
	}

	// success that arrived after supersession counts as cancelled
	if !owned || ctx.Err() != nil {
		b.mu.Unlock()
		return
	}

	g.lastCompletedSignature = req.signature
	b.mu.Unlock()

	b.Apply(groupID, data)
}
