package binder

import "context"

// Field is an externally-owned handle on a single form control. The binder
// treats it as an opaque capability: it reads and writes display text and
// never validates the underlying control.
type Field interface {
	// Value returns the current display value.
	Value() string
	// SetValue replaces the display value.
	SetValue(value string) error
	// Present reports whether the handle is still valid. Fields of a
	// closed form session report false and are skipped on write.
	Present() bool
}

// Lookup resolves a normalized postal code and house number to a flat map
// of source-system keys to values. Implementations must honor context
// cancellation.
type Lookup interface {
	Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error)
}

// Suggestion is a proposed overwrite of a non-empty, differing field value
// that requires explicit confirmation.
type Suggestion struct {
	Role     Role   `json:"role"`
	Current  string `json:"current"`
	Proposed string `json:"proposed"`
}

// Confirmer presents conflicting suggestions to the user and reports the
// accept/decline decision. An error means no decision was obtained (for
// example a prompt timeout); the binder then declines without remembering
// the suggestion set, so an identical conflict may prompt again.
type Confirmer interface {
	Confirm(ctx context.Context, groupID string, suggestions []Suggestion) (bool, error)
}
