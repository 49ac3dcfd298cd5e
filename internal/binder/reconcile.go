package binder

import (
	"context"
	"sort"
	"strings"
)

// fieldWrite is a queued write of a resolved value to a bound field.
type fieldWrite struct {
	role  Role
	field Field
	value string
}

// Apply reconciles fetched lookup data against the group's current field
// values. Empty destinations are filled silently; non-empty, differing
// destinations become suggestions that need an explicit yes/no from the
// confirmation collaborator. A suggestion set the user already declined is
// not shown again until it changes or is accepted.
func (b *Binder) Apply(groupID string, data map[string]string) {
	// a lookup that matched nothing has nothing to reconcile
	if len(data) == 0 {
		return
	}

	b.mu.Lock()
	g, ok := b.group(groupID)
	if !ok || g.applying {
		b.mu.Unlock()
		return
	}

	var silent []fieldWrite
	var conflicts []fieldWrite
	var suggestions []Suggestion

	for _, role := range roleOrder {
		field, bound := g.fields[role]
		if !bound || field == nil || !field.Present() {
			continue
		}
		proposed, ok := resolveValue(role, data)
		if !ok {
			continue
		}

		current := field.Value()
		if strings.TrimSpace(current) == "" {
			silent = append(silent, fieldWrite{role: role, field: field, value: proposed})
			continue
		}
		if normalizeFor(role, current) == normalizeFor(role, proposed) {
			continue
		}
		conflicts = append(conflicts, fieldWrite{role: role, field: field, value: proposed})
		suggestions = append(suggestions, Suggestion{Role: role, Current: current, Proposed: proposed})
	}

	if len(silent) == 0 && len(conflicts) == 0 {
		b.mu.Unlock()
		return
	}

	g.applying = true
	lastDeclined := g.lastDeclinedSignature
	b.mu.Unlock()

	// the guard must be released on every path, including panicking writes
	defer func() {
		b.mu.Lock()
		g.applying = false
		b.mu.Unlock()
	}()

	written := b.writeFields(groupID, silent)

	if len(conflicts) > 0 {
		signature := suggestionSignature(suggestions)
		if signature == lastDeclined {
			// already answered no to exactly this conflict set
			b.publishApplied(groupID, written, false)
			return
		}

		accepted, err := b.confirmer.Confirm(context.Background(), groupID, suggestions)
		switch {
		case err != nil:
			// no decision obtained; decline without remembering so the
			// prompt may reappear
			b.log.Warn("suggestion prompt unresolved", "group_id", groupID, "error", err)
		case accepted:
			written = append(written, b.writeFields(groupID, conflicts)...)
			b.mu.Lock()
			g.lastDeclinedSignature = ""
			b.mu.Unlock()
		default:
			b.mu.Lock()
			g.lastDeclinedSignature = signature
			b.mu.Unlock()
			b.publishDeclined(groupID, signature)
		}
	}

	b.publishApplied(groupID, written, len(conflicts) > 0)
}

// writeFields performs the queued writes, skipping handles that went
// absent since reconciliation started. Write failures are logged and do
// not abort the remaining writes.
func (b *Binder) writeFields(groupID string, writes []fieldWrite) []fieldWrite {
	applied := make([]fieldWrite, 0, len(writes))
	for _, w := range writes {
		if !w.field.Present() {
			continue
		}
		if err := w.field.SetValue(w.value); err != nil {
			b.log.Warn("field write failed", "group_id", groupID, "role", string(w.role), "error", err)
			continue
		}
		applied = append(applied, w)
	}
	return applied
}

// suggestionSignature fingerprints a conflict set independent of ordering:
// the sorted (role, normalized current, normalized proposed) triples.
func suggestionSignature(suggestions []Suggestion) string {
	parts := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		parts = append(parts, string(s.Role)+"\x1f"+normalizeFor(s.Role, s.Current)+"\x1f"+normalizeFor(s.Role, s.Proposed))
	}
	sort.Strings(parts)
	return strings.Join(parts, "\x1e")
}
