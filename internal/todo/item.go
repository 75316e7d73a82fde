// Package todo holds the to-do list state, the actions that change it, and
// the reducer and store that apply those actions.
package todo

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// Item is a single to-do entry.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
	Done    bool   `json:"done"`
}

// State is the full to-do list state.
type State struct {
	// Items is the stored order. Display order is derived by DisplayOrder.
	Items []Item

	// Error is raised when persisting Items failed and stays raised until
	// CloseError is dispatched.
	Error bool

	// ErrorReason is the message of the failure that raised Error.
	ErrorReason string
}

// IDFunc generates item IDs.
type IDFunc func() string

// NewID returns a time-ordered ID: the current Unix time in milliseconds and
// a random number below 1e16, both in base 36, joined by a dash.
func NewID() string {
	return newIDAt(time.Now())
}

func newIDAt(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	r := strconv.FormatUint(rand.Uint64N(1e16), 36)
	return ts + "-" + r
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Equal reports whether two item lists hold the same items in the same order.
func Equal(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
