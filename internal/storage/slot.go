// Package storage provides durable key-value slots with change notification.
//
// A Slot is one attachment to a shared storage origin. Several slots (in one
// process or several) may attach to the same origin; a write through one slot
// notifies the watchers registered through every other slot, never the
// writer's own.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a write would grow the origin past its
	// quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")

	// ErrClosed is returned by operations on a closed slot.
	ErrClosed = errors.New("storage: slot closed")
)

// Slot is a durable key-value store shared with other slots of the same
// origin.
type Slot interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value under key. Writing the value already stored is
	// not a change and notifies nobody.
	Set(ctx context.Context, key, value string) error

	// Watch calls fn whenever another slot changes key. It returns once the
	// watch is armed; changes made after Watch returns are observed. The
	// watch ends when ctx is done or stop is called.
	Watch(ctx context.Context, key string, fn func()) (stop func(), err error)

	// Writer identifies this slot among the slots of its origin.
	Writer() string

	// Close releases the slot and ends its watches.
	Close() error
}

func quotaError(key string, size, quota int) error {
	return fmt.Errorf("%w: storing %d bytes under %q exceeds the %d byte quota", ErrQuotaExceeded, size, key, quota)
}

// entrySize is the size an entry counts against the quota.
func entrySize(key, value string) int {
	return len(key) + len(value)
}
