package ready

import "time"

// WaitOutcome classifies how a Subscription.Wait resolved.
type WaitOutcome string

const (
	// WaitCompleted means a sender completed the slot.
	WaitCompleted WaitOutcome = "completed"

	// WaitPrimed means the coordinator primed the slot and no live
	// sender was outstanding — the normal "nothing to show" outcome.
	WaitPrimed WaitOutcome = "primed"

	// WaitCancelled means the waiter's context ended first.
	WaitCancelled WaitOutcome = "cancelled"
)

// Observer receives coordination lifecycle events. Implementations
// must be safe for concurrent use and must not block: callbacks run
// on the goroutines driving the coordination itself.
//
// The metrics package provides a Prometheus-backed implementation.
type Observer interface {
	// SlotRegistered is called when a coordinator registers a slot.
	SlotRegistered()

	// SenderAcquired is called when write evidence is acquired.
	SenderAcquired()

	// SenderReleased is called when a non-manual sender is released.
	SenderReleased()

	// Primed is called once per Notify with the slot count.
	Primed(slots int)

	// Completed is called on a slot's Unset/Primed to Completed
	// transition. Repeat completions do not re-fire.
	Completed()

	// WaitStarted is called when a subscription begins waiting.
	WaitStarted()

	// WaitResolved is called when a wait ends, with its duration
	// and outcome.
	WaitResolved(d time.Duration, outcome WaitOutcome)
}
