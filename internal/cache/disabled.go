package cache

import (
	"context"
	"time"
)

// DisabledStore never stores anything.
type DisabledStore struct{}

// NewDisabledStore creates a DisabledStore.
func NewDisabledStore() *DisabledStore {
	return &DisabledStore{}
}

// Get always misses.
func (DisabledStore) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

// Set does nothing.
func (DisabledStore) Set(context.Context, string, []byte, time.Duration) {}

// Delete does nothing.
func (DisabledStore) Delete(context.Context, string) {}

// DeleteMany does nothing.
func (DisabledStore) DeleteMany(context.Context, ...string) {}

// Increment always reports ErrUnavailable.
func (DisabledStore) Increment(context.Context, string, time.Duration) (int64, error) {
	return 0, ErrUnavailable
}

// Close does nothing.
func (DisabledStore) Close() error {
	return nil
}
