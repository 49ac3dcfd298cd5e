package binder

import (
	"strings"

	"addressfill_backend/platform/normalize"
)

// Role is the semantic purpose of a field within an address group.
type Role string

const (
	RolePostalCode Role = "postalcode"
	RoleNumber     Role = "number"
	RoleStreet     Role = "street"
	RoleCity       Role = "city"
	RoleCountry    Role = "country"
)

// defaultCountry is filled in when the lookup response carries no country.
const defaultCountry = "Nederland"

// roleOrder fixes iteration order so reconciliation output is deterministic.
var roleOrder = []Role{RolePostalCode, RoleNumber, RoleStreet, RoleCity, RoleCountry}

// requiredRoles must be bound and non-empty before any lookup is issued.
var requiredRoles = []Role{RolePostalCode, RoleNumber}

// sourceKeys lists the acceptable lookup-response keys per role, first
// present non-empty key wins.
var sourceKeys = map[Role][]string{
	RoleStreet:     {"street", "roadName"},
	RoleCity:       {"city", "municipality"},
	RoleCountry:    {"country"},
	RolePostalCode: {"postalCode"},
	RoleNumber:     {"houseNumber"},
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RolePostalCode, RoleNumber, RoleStreet, RoleCity, RoleCountry:
		return true
	}
	return false
}

// resolveValue picks the field value for a role out of fetched lookup data.
func resolveValue(role Role, data map[string]string) (string, bool) {
	for _, key := range sourceKeys[role] {
		if v, ok := data[key]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	if role == RoleCountry {
		return defaultCountry, true
	}
	return "", false
}

// normalizeFor returns the comparable form of a value for the given role.
// Postal codes compare whitespace-stripped and upper-cased, everything else
// case-folded with collapsed whitespace.
func normalizeFor(role Role, value string) string {
	if role == RolePostalCode {
		return normalize.Postcode(value)
	}
	return normalize.Fold(value)
}
