// Package uuid generates the string identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Version 7 IDs carry a millisecond
// timestamp in their high bits, so rows keyed by them stay roughly
// insertion-ordered in the primary key index.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4.
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
