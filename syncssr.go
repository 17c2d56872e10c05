// Package syncssr is a synchronization layer for streamed server
// rendering: it lets components positioned earlier in a render tree
// consume data that is only produced by components positioned later in
// the same tree, without breaking the consistency between the streamed
// markup and the state the client hydrates from.
//
// Any workable approach must guarantee that a later component which
// intends to set a value gets to do so before an earlier component's
// read is allowed to proceed — otherwise the earlier markup streams
// out without the content, or with content that disagrees with the
// hydrated state. The primitive offered here is an asynchronous
// readiness wait: a reader suspends until the paired write side is
// used or released, or until the enclosing boundary declares that no
// writer will ever appear.
//
// # Usage
//
// Wrap the subtree that may produce values in a Boundary. Create
// signal resources (or portlets) against the boundary's coordinator,
// hand the read side to early consumers and the write side to late
// producers, and exit the boundary once all producing work has been
// scheduled:
//
//	b := syncssr.NewBoundary()
//	nav := syncssr.NewPortlet[Nav](b)
//
//	// Late producer: UpdateWith acquires the write evidence before
//	// spawning its fetch, and before the boundary exits below.
//	nav.UpdateWith(ctx, fetchNav)
//	b.Exit()
//
//	html, _ := nav.Render(ctx, renderNav) // early consumer, waits
//
// The example under example/navportlet shows the full pattern inside
// an HTTP server that streams pages section by section.
package syncssr

import (
	"github.com/vango-go/sync-ssr/pkg/portlet"
	"github.com/vango-go/sync-ssr/pkg/ready"
	"github.com/vango-go/sync-ssr/pkg/signal"
)

// Re-exported core types, so most applications only import this
// package.
type (
	// Ready is the single-writer readiness flag.
	Ready = ready.Ready

	// Handle is a reference to a possibly absent Ready.
	Handle = ready.Handle

	// Subscription is a waitable handle to a readiness slot.
	Subscription = ready.Subscription

	// Sender is producer-side pending-value evidence.
	Sender = ready.Sender

	// Coordinator manages the readiness slots of one boundary.
	Coordinator = ready.Coordinator

	// CoReady is one coordinated readiness slot.
	CoReady = ready.CoReady

	// Observer receives coordination lifecycle events.
	Observer = ready.Observer
)

// NewReady creates a fresh single-writer readiness flag.
func NewReady(opts ...ready.Option) *Ready {
	return ready.New(opts...)
}

// NewHandle wraps a possibly nil Ready.
func NewHandle(r *Ready) Handle {
	return ready.NewHandle(r)
}

// NewSignalResource creates a signal-resource pairing registered with
// the boundary's coordinator.
func NewSignalResource[T any](b *Boundary, initial T) (*signal.SignalResource[T], error) {
	return signal.New(b.Coordinator(), initial)
}

// NewPortlet creates an empty portlet registered with the boundary's
// coordinator, panicking if b is nil. Portlets are typically created
// once per page scope, right after the boundary.
func NewPortlet[T any](b *Boundary, opts ...portlet.PortletOption) *portlet.Portlet[T] {
	return portlet.MustNew[T](b.Coordinator(), opts...)
}
