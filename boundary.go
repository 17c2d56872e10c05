package syncssr

import (
	"log/slog"
	"sync/atomic"

	"github.com/vango-go/sync-ssr/pkg/ready"
)

// Boundary is the explicit scope object enclosing a synchronized
// subtree. It owns a Coordinator for coordinated slots plus a plain
// Ready flag for the single-writer variant, and its Exit is the
// scope-exit hook: it primes every registered slot and completes the
// plain flag, exactly once.
//
// The boundary replaces ambient context lookup with explicit wiring:
// everything that needs the scope receives the boundary (or its
// coordinator) as a parameter. A nil coordinator is then an ordinary
// construction-time error instead of a missing-context surprise.
//
// Ordering matters: all senders must be acquired before Exit runs.
// Producers created inside the scope acquire their write evidence
// synchronously, so deferring Exit to the end of the scope's setup —
// after all nested work has been scheduled, not necessarily completed —
// is sufficient.
type Boundary struct {
	coord  *ready.Coordinator
	ready  *ready.Ready
	logger *slog.Logger
	exited atomic.Bool
}

// BoundaryOption configures a Boundary.
type BoundaryOption func(*boundaryConfig)

type boundaryConfig struct {
	logger   *slog.Logger
	observer ready.Observer
}

// WithLogger sets the logger used for debug-level boundary and
// coordination tracing. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) BoundaryOption {
	return func(c *boundaryConfig) {
		c.logger = logger
	}
}

// WithObserver wires an observer (for example metrics.New()) into the
// boundary's coordinator and flag.
func WithObserver(obs ready.Observer) BoundaryOption {
	return func(c *boundaryConfig) {
		c.observer = obs
	}
}

// NewBoundary creates a boundary with a fresh coordinator and flag.
func NewBoundary(opts ...BoundaryOption) *Boundary {
	cfg := boundaryConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	readyOpts := []ready.Option{ready.WithLogger(cfg.logger)}
	if cfg.observer != nil {
		readyOpts = append(readyOpts, ready.WithObserver(cfg.observer))
	}
	return &Boundary{
		coord:  ready.NewCoordinator(readyOpts...),
		ready:  ready.New(readyOpts...),
		logger: cfg.logger,
	}
}

// Coordinator returns the boundary's coordinator, for registering
// slots and signal resources.
func (b *Boundary) Coordinator() *ready.Coordinator {
	return b.coord
}

// Ready returns the boundary's single-writer flag. Subscribers to this
// flag resolve when the boundary exits.
func (b *Boundary) Ready() *ready.Ready {
	return b.ready
}

// Handle returns a handle to the boundary's single-writer flag.
func (b *Boundary) Handle() ready.Handle {
	return b.ready.Handle()
}

// Exit runs the scope-exit hook: notify the coordinator (priming all
// slots without a live sender outstanding, as seen by each waiter) and
// complete the single-writer flag. Only the first call acts.
func (b *Boundary) Exit() {
	if b.exited.Swap(true) {
		return
	}
	b.logger.Debug("boundary exit", "slots", b.coord.Len())
	b.coord.Notify()
	b.ready.Complete()
}

// Run executes fn within the boundary's scope and exits on every
// return path, including panics and early returns. fn must schedule
// all producing work before returning; work may still be in flight.
func (b *Boundary) Run(fn func(*Boundary) error) error {
	defer b.Exit()
	return fn(b)
}
