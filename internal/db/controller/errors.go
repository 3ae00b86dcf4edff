// Package controller groups the per entity database controllers.
package controller

import "errors"

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")

	// ErrIDEmpty is returned when a lookup is called with an empty id.
	ErrIDEmpty = errors.New("id cannot be empty")
)

// Unique returns ids without duplicates and empty values, keeping order.
func Unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
