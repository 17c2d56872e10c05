// Package watch provides a versioned value cell with broadcast change
// notification. It is the only suspension mechanism in this module:
// every waiter re-checks its predicate against the latest value on each
// wake, so a value captured before subscribing is never trusted.
package watch

import (
	"context"
	"sync"
)

// Cell holds a value of type T plus a version counter. Mutations bump
// the version and wake every waiter by closing the current notification
// channel and installing a fresh one (channel-swap broadcast).
type Cell[T any] struct {
	mu      sync.Mutex
	value   T
	version uint64
	changed chan struct{}
}

// NewCell creates a cell seeded with the initial value at version 0.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:   initial,
		changed: make(chan struct{}),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Version returns the current version counter.
func (c *Cell[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Set replaces the value and wakes all waiters. The mutation and the
// broadcast happen under one critical section, so a waiter can never
// observe the notification without the new value being visible.
func (c *Cell[T]) Set(value T) {
	c.Update(func(T) T { return value })
}

// Update applies fn to the current value under the cell lock and wakes
// all waiters. fn must not block or touch the cell.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	c.value = fn(c.value)
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

// Wait blocks until pred holds for the cell's value, returning that
// value. The predicate is evaluated under the cell lock: once against
// the current value, then once after every mutation. Returns the zero
// value and ctx.Err() if the context is done first.
func (c *Cell[T]) Wait(ctx context.Context, pred func(T) bool) (T, error) {
	for {
		c.mu.Lock()
		if pred(c.value) {
			v := c.value
			c.mu.Unlock()
			return v, nil
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}
