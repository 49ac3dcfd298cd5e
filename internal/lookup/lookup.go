// Package lookup composes the address lookup transport with optional
// Redis caching and request collapsing.
package lookup

import "context"

// Service resolves a normalized postal code and house number to a flat
// map of source-system keys to values.
type Service interface {
	Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error)
}
