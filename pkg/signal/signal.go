// Package signal couples a readable/writable value cell with one
// readiness slot of a coordinator, producing a reader that suspends
// until the paired writer is used or released, and a write signal
// that arms the suspension when acquired and releases it when it
// mutates or is disposed.
package signal

import (
	"context"

	"github.com/vango-go/sync-ssr/internal/errors"
	"github.com/vango-go/sync-ssr/pkg/ready"
)

// ErrMissingCoordinator is returned by New when no coordinator is
// supplied. Constructing a resource outside a boundary is a structural
// programming error and is surfaced at the construction site, never
// lazily at wait time.
var ErrMissingCoordinator = errors.New("E101")

// SignalResource pairs a value cell with one readiness slot. The
// pairing is immutable for the resource's lifetime; only the contained
// value and the slot's phase change.
//
// The value type should be comparable and serializable: it crosses the
// render/hydration boundary in applications. Equality is pluggable via
// the underlying cell.
type SignalResource[T any] struct {
	slot *ready.CoReady
	cell *Cell[T]
}

// New creates a signal-resource pairing registered with coord,
// holding the initial value. Returns ErrMissingCoordinator if coord is
// nil.
func New[T any](coord *ready.Coordinator, initial T) (*SignalResource[T], error) {
	if coord == nil {
		return nil, ErrMissingCoordinator
	}
	return &SignalResource[T]{
		slot: coord.Slot(),
		cell: NewCell(initial),
	}, nil
}

// MustNew is New, panicking on a nil coordinator.
func MustNew[T any](coord *ready.Coordinator, initial T) *SignalResource[T] {
	s, err := New(coord, initial)
	if err != nil {
		panic(err)
	}
	return s
}

// ReadOnly returns the asynchronous read side of the pairing.
func (s *SignalResource[T]) ReadOnly() *Reader[T] {
	return &Reader[T]{slot: s.slot, cell: s.cell}
}

// WriteOnly returns a write signal wrapping the cell's write side and
// a freshly acquired sender for the slot. Every mutation through the
// signal completes the sender, and so does releasing it — a producer
// that computes, decides not to write and releases never strands the
// paired reader.
//
// Acquire the write signal before the producing computation suspends
// on any other asynchronous work. Acquired after an internal await
// point, the coordinator's notify may already have released the wait
// and the reader observes the pairing's earlier value instead of the
// intended one. This is a documented ordering contract, not a
// detectable error: it is what lets a pairing with no writer at all
// resolve instead of hanging.
func (s *SignalResource[T]) WriteOnly() *WriteSignal[T] {
	return &WriteSignal[T]{cell: s.cell, sender: s.slot.Sender()}
}

// WriteOnlyManual returns a write signal whose sender ignores Release:
// the paired reader stays suspended until a mutation (or explicit
// Complete) occurs. For producers that hold the evidence across a
// fetch and always signal by writing.
func (s *SignalResource[T]) WriteOnlyManual() *WriteSignal[T] {
	return &WriteSignal[T]{cell: s.cell, sender: s.slot.SenderManual()}
}

// WithWriter acquires a write signal, runs fn with it, and releases on
// every exit path including panics.
func (s *SignalResource[T]) WithWriter(fn func(*WriteSignal[T])) {
	w := s.WriteOnly()
	defer w.Release()
	fn(w)
}

// SetUntracked writes the cell directly, bypassing readiness
// signaling entirely. No sender is acquired and no waiter is woken.
func (s *SignalResource[T]) SetUntracked(value T) {
	s.cell.Set(value)
}

// GetUntracked reads the cell directly without waiting.
func (s *SignalResource[T]) GetUntracked() T {
	return s.cell.Get()
}

// Slot exposes the pairing's readiness slot, mainly for observability
// and tests.
func (s *SignalResource[T]) Slot() *ready.CoReady {
	return s.slot
}

// Reader is the asynchronous read side of a SignalResource.
type Reader[T any] struct {
	slot *ready.CoReady
	cell *Cell[T]
}

// Await subscribes to the pairing's slot, waits per the coordinated
// readiness semantics, then re-reads the cell. The returned value is
// the latest one present when the wait condition was satisfied, not a
// value captured at subscribe time — a write racing the wait-release
// is still observed.
//
// On context cancellation the current cell value is returned alongside
// ctx.Err().
func (r *Reader[T]) Await(ctx context.Context) (T, error) {
	sub := r.slot.Subscribe()
	if err := sub.Wait(ctx); err != nil {
		return r.cell.Get(), err
	}
	return r.cell.Get(), nil
}

// WriteSignal is the producer-side handle of a SignalResource: a
// clone of the cell's write side plus live sender evidence for the
// pairing's slot.
//
// Keeping a write signal alive indefinitely without mutating or
// releasing leaves the paired reader suspended forever. That deadlock
// is the documented consequence of holding the evidence, not a defect.
type WriteSignal[T any] struct {
	cell   *Cell[T]
	sender *ready.Sender
}

// Set writes the value and completes the pairing's slot. Completion
// fires on every mutation, not just the first: writing releases the
// wait, whenever it happens.
func (w *WriteSignal[T]) Set(value T) {
	w.cell.Set(value)
	w.sender.Complete()
}

// Update applies fn to the value and completes the pairing's slot.
func (w *WriteSignal[T]) Update(fn func(T) T) {
	w.cell.Update(fn)
	w.sender.Complete()
}

// Complete signals readiness without writing.
func (w *WriteSignal[T]) Complete() {
	w.sender.Complete()
}

// Release disposes of the write signal. For a standard signal this
// completes the slot if nothing else has; for a manual one it is a
// no-op. Releasing twice is harmless.
func (w *WriteSignal[T]) Release() {
	w.sender.Release()
}
