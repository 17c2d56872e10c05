package signal

import (
	"reflect"
	"sync"
)

// Cell is the mutable value holder inside a SignalResource. It is the
// only shared mutable resource in a pairing: logically one writer role
// and one reader role, guarded by a RWMutex.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T

	// equal determines whether a write changed the value. If nil,
	// default equality is used.
	equal func(T, T) bool
}

// NewCell creates a cell holding the initial value.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value. Reports whether the value changed according
// to the cell's equality function.
func (c *Cell[T]) Set(value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := !c.equals(c.value, value)
	if changed {
		c.value = value
	}
	return changed
}

// Update atomically reads and replaces the value. Reports whether the
// value changed.
func (c *Cell[T]) Update(fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fn(c.value)
	changed := !c.equals(c.value, next)
	if changed {
		c.value = next
	}
	return changed
}

// WithEquals configures a custom equality function, for value types
// where reflect.DeepEqual is too expensive or has wrong semantics.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for comparable dynamic types and falls back to
// reflect.DeepEqual for slices, maps and structs containing them.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if reflect.TypeOf(av).Comparable() && reflect.TypeOf(bv).Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(a, b)
}
