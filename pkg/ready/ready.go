package ready

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/vango-go/sync-ssr/internal/errors"
	"github.com/vango-go/sync-ssr/internal/watch"
)

// Phase is the lifecycle of one readiness slot. Once Completed, a slot
// never regresses to Unset or Primed.
type Phase int

const (
	// Unset means no signal has been observed yet.
	Unset Phase = iota

	// Primed means the owning coordinator announced that no further
	// senders will appear from its scope. Only coordinated slots
	// enter this phase.
	Primed

	// Completed means the value for this slot is final and may be
	// read. Terminal.
	Completed
)

// String returns the phase name for logs and debug output.
func (p Phase) String() string {
	switch p {
	case Unset:
		return "unset"
	case Primed:
		return "primed"
	case Completed:
		return "completed"
	default:
		return "invalid"
	}
}

// slotState is the broadcast value of one readiness slot. Phase and
// live sender count share one cell so that every mutation is visible
// to waiters atomically with its broadcast.
type slotState struct {
	phase   Phase
	senders int
}

// core is the shared state behind Ready and CoReady.
type core struct {
	cell   *watch.Cell[slotState]
	logger *slog.Logger
	obs    Observer
	subs   atomic.Int64
}

func newCore(logger *slog.Logger, obs Observer) *core {
	if logger == nil {
		logger = slog.Default()
	}
	return &core{
		cell:   watch.NewCell(slotState{}),
		logger: logger,
		obs:    obs,
	}
}

// complete transitions the slot to Completed and broadcasts. Safe to
// call any number of times; only the first call transitions.
func (c *core) complete() {
	var transitioned bool
	c.cell.Update(func(s slotState) slotState {
		transitioned = s.phase != Completed
		s.phase = Completed
		return s
	})
	if transitioned {
		c.logger.Debug("readiness slot completed")
		if c.obs != nil {
			c.obs.Completed()
		}
	}
}

// prime moves an Unset slot to Primed and broadcasts. Completed slots
// are left alone.
func (c *core) prime() {
	c.cell.Update(func(s slotState) slotState {
		if s.phase == Unset {
			s.phase = Primed
		}
		return s
	})
}

// acquireSender registers live write evidence for this slot.
func (c *core) acquireSender(manual bool) *Sender {
	c.cell.Update(func(s slotState) slotState {
		s.senders++
		return s
	})
	if c.obs != nil {
		c.obs.SenderAcquired()
	}
	return &Sender{c: c, manual: manual}
}

func (c *core) releaseSender() {
	c.cell.Update(func(s slotState) slotState {
		s.senders--
		if s.senders < 0 {
			errors.Panic("E201")
		}
		return s
	})
	if c.obs != nil {
		c.obs.SenderReleased()
	}
}

// snapshot returns the current slot state for debug output.
func (c *core) snapshot() slotState {
	return c.cell.Get()
}

// Ready is a single-shot, multi-subscriber broadcast flag. Exactly one
// logical completion event; any number of waiters. A plain boundary
// completes its Ready at subtree exit.
type Ready struct {
	c *core
}

// New creates a fresh Ready in the Unset phase.
func New(opts ...Option) *Ready {
	cfg := applyOptions(opts)
	return &Ready{c: newCore(cfg.logger, cfg.observer)}
}

// Complete idempotently transitions the flag to Completed and wakes
// all current and future subscribers.
func (r *Ready) Complete() {
	r.c.complete()
}

// Subscribe returns a waitable handle bound to this flag. Subscribing
// after completion is fine; Wait resolves immediately.
func (r *Ready) Subscribe() Subscription {
	r.c.subs.Add(1)
	return Subscription{c: r.c}
}

// Sender acquires write evidence for this flag. Releasing the sender
// completes the flag unless it was acquired in manual mode.
func (r *Ready) Sender() *Sender {
	return r.c.acquireSender(false)
}

// Handle returns a handle backed by this flag.
func (r *Ready) Handle() Handle {
	return Handle{ready: r}
}

// LogValue exposes the flag's state to slog: phase, live sender count
// and subscriber count.
func (r *Ready) LogValue() slog.Value {
	s := r.c.snapshot()
	return slog.GroupValue(
		slog.String("phase", s.phase.String()),
		slog.Int("senders", s.senders),
		slog.Int64("subscribers", r.c.subs.Load()),
	)
}

// Handle is a reference to a possibly absent Ready. The zero value is
// valid: subscriptions obtained through it resolve immediately, so
// components can use readiness without being coupled to a boundary
// that may or may not enclose them.
type Handle struct {
	ready *Ready
}

// NewHandle wraps r, which may be nil.
func NewHandle(r *Ready) Handle {
	return Handle{ready: r}
}

// Subscribe returns a subscription. With no backing Ready the
// subscription's Wait returns immediately.
func (h Handle) Subscribe() Subscription {
	if h.ready == nil {
		return Subscription{}
	}
	return h.ready.Subscribe()
}

// Subscription is a waitable handle to one readiness slot. The zero
// value waits on nothing and resolves immediately.
type Subscription struct {
	c           *core
	coordinated bool
}

// Wait suspends until the slot completes, or, for coordinated slots,
// until the slot is primed with no live sender outstanding. Waiting on
// an already-released slot returns immediately. Returns ctx.Err() if
// the context is done first; the slot state is unaffected either way.
func (s Subscription) Wait(ctx context.Context) error {
	if s.c == nil {
		return nil
	}
	start := time.Now()
	if s.c.obs != nil {
		s.c.obs.WaitStarted()
	}
	st, err := s.c.cell.Wait(ctx, func(st slotState) bool {
		if st.phase == Completed {
			return true
		}
		return s.coordinated && st.phase == Primed && st.senders == 0
	})
	if err != nil {
		if s.c.obs != nil {
			s.c.obs.WaitResolved(time.Since(start), WaitCancelled)
		}
		return err
	}
	outcome := WaitCompleted
	if st.phase != Completed {
		outcome = WaitPrimed
	}
	if s.c.obs != nil {
		s.c.obs.WaitResolved(time.Since(start), outcome)
	}
	// Resolve, then yield once: sibling goroutines must be able to
	// observe this resolution before the caller proceeds to depend
	// on its side effects.
	runtime.Gosched()
	return nil
}

// Sender is the producer-side evidence that a slot's value is still
// pending. While a sender is live, a primed coordinated slot keeps its
// waiters suspended.
type Sender struct {
	c        *core
	manual   bool
	released atomic.Bool
}

// Complete idempotently completes the slot, waking all waiters.
// Writing through a paired write signal calls this on every mutation,
// not just the first.
func (s *Sender) Complete() {
	s.c.complete()
}

// Release disposes of the sender. In the default mode this completes
// the slot, covering the producer that computes, decides not to write,
// and walks away. In manual mode release keeps the waiters suspended;
// only an explicit Complete resolves them. Releasing twice is a no-op.
func (s *Sender) Release() {
	if s.released.Swap(true) {
		return
	}
	if s.manual {
		return
	}
	s.c.releaseSender()
	s.c.complete()
}

// Manual reports whether this sender was acquired in manual mode.
func (s *Sender) Manual() bool {
	return s.manual
}
