// Package history tracks the cities a session recently looked up.
//
// The history is a bounded ring: at most Capacity entries, oldest first.
// A city equal to the most recent entry is not appended again, but the
// same city may appear more than once when other cities separate it.
package history

import (
	"slices"

	"github.com/spetersoncode/citydesk/session"
)

// Capacity is the maximum number of cities kept.
const Capacity = 5

// Append returns h with city added under the ring rules. h is not modified.
func Append(h []string, city string) []string {
	if n := len(h); n > 0 && h[n-1] == city {
		return slices.Clone(h)
	}
	out := append(slices.Clone(h), city)
	if over := len(out) - Capacity; over > 0 {
		out = out[over:]
	}
	return out
}

// Record appends city to the session's history. Concurrent calls on the
// same session are serialized by the store.
func Record(s *session.Store, city string) []string {
	return session.UpdateCityHistory(s, func(h []string) []string {
		return Append(h, city)
	})
}

// Recent returns the session's history, oldest first.
func Recent(s *session.Store) []string {
	return session.CityHistory(s)
}
