package ready

import (
	"log/slog"
	"sync"
)

// Coordinator manages a dynamically growing set of independent CoReady
// slots for one synchronization scope. Slots register at construction
// and are never removed; Notify primes every slot that has not already
// completed.
//
// A Coordinator is an explicit object threaded through calls, never
// process-global state. The enclosing boundary owns it and invokes
// Notify at its natural exit point, after all nested work that might
// acquire senders has been scheduled.
type Coordinator struct {
	mu     sync.Mutex
	slots  []*CoReady
	logger *slog.Logger
	obs    Observer
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	cfg := applyOptions(opts)
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		logger: logger,
		obs:    cfg.observer,
	}
}

// Slot creates and registers a new readiness slot. The slot inherits
// the coordinator's logger and observer.
func (co *Coordinator) Slot() *CoReady {
	slot := &CoReady{c: newCore(co.logger, co.obs)}
	co.mu.Lock()
	co.slots = append(co.slots, slot)
	co.mu.Unlock()
	if co.obs != nil {
		co.obs.SlotRegistered()
	}
	return slot
}

// Notify primes every registered slot not already completed. Idempotent:
// repeated calls only re-assert Primed. A slot registered after the last
// Notify call is never primed; its subscribers resolve only via explicit
// completion. Slot creation belongs inside the boundary's scope, before
// the exit hook runs.
func (co *Coordinator) Notify() {
	co.mu.Lock()
	slots := make([]*CoReady, len(co.slots))
	copy(slots, co.slots)
	co.mu.Unlock()

	for _, slot := range slots {
		slot.c.prime()
	}
	co.logger.Debug("coordinator notified", "slots", len(slots))
	if co.obs != nil {
		co.obs.Primed(len(slots))
	}
}

// Len returns the number of registered slots.
func (co *Coordinator) Len() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.slots)
}

// CoReady is one independently completable readiness slot within a
// Coordinator. Unlike the plain Ready flag it has three phases: a
// primed slot releases its waiters only once no live sender remains.
type CoReady struct {
	c *core
}

// Subscribe returns a waitable handle bound to this slot. The wait
// resolves on completion, or on priming once the live sender count
// drops to zero — both conditions are re-checked by the waiter against
// the latest slot state on every wake.
func (r *CoReady) Subscribe() Subscription {
	r.c.subs.Add(1)
	return Subscription{c: r.c, coordinated: true}
}

// Sender acquires write evidence for this slot. The acquisition must
// happen before the producer suspends on any other asynchronous work;
// a sender acquired after the coordinator has already notified cannot
// stop a waiter that has resolved in the meantime.
func (r *CoReady) Sender() *Sender {
	return r.c.acquireSender(false)
}

// SenderManual acquires a sender whose Release is a no-op: waiters stay
// suspended until an explicit Complete. Used by producers that hold the
// evidence across a fetch and always signal by writing.
func (r *CoReady) SenderManual() *Sender {
	return r.c.acquireSender(true)
}

// Complete idempotently completes the slot.
func (r *CoReady) Complete() {
	r.c.complete()
}

// Phase returns the slot's current phase.
func (r *CoReady) Phase() Phase {
	return r.c.snapshot().phase
}

// Senders returns the current live sender count.
func (r *CoReady) Senders() int {
	return r.c.snapshot().senders
}

// LogValue exposes the slot's state to slog.
func (r *CoReady) LogValue() slog.Value {
	s := r.c.snapshot()
	return slog.GroupValue(
		slog.String("phase", s.phase.String()),
		slog.Int("senders", s.senders),
		slog.Int64("subscribers", r.c.subs.Load()),
	)
}
