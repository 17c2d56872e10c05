// Package portlet implements the "fill this placeholder later" UI
// pattern over a signal-resource pairing.
//
// A portlet is an optionally rendered component placed early in a
// page — a navigation block, breadcrumbs — whose content is decided by
// whichever routed component renders later. Because the pairing's
// reader waits for the late writer (and only as long as one is
// outstanding), the portlet renders the expected content under
// streamed server rendering without locking the page up when no route
// chooses to fill it.
package portlet

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vango-go/sync-ssr/internal/errors"
	"github.com/vango-go/sync-ssr/pkg/ready"
	"github.com/vango-go/sync-ssr/pkg/signal"
)

// ErrMissingCoordinator is returned by New when no coordinator is
// supplied.
var ErrMissingCoordinator = errors.New("E102")

// Option is an optional value of type T. The zero value is None. It
// serializes to JSON as null or the bare value, so a resolved portlet
// state can cross the render/hydration boundary.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns the empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the contained value and whether one is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// MarshalJSON encodes None as null and Some(v) as v.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as None and anything else as Some.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Option[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Portlet is a generic optional-value container backed by a
// SignalResource[Option[T]]. Consumers render it early via Render;
// producers fill it later via Set or UpdateWith.
type Portlet[T any] struct {
	res    *signal.SignalResource[Option[T]]
	logger *slog.Logger
}

// PortletOption configures a Portlet.
type PortletOption func(*portletConfig)

type portletConfig struct {
	logger *slog.Logger
}

// WithLogger sets the portlet's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) PortletOption {
	return func(c *portletConfig) {
		c.logger = logger
	}
}

// New creates a portlet registered with coord, initially empty.
// Returns ErrMissingCoordinator if coord is nil.
func New[T any](coord *ready.Coordinator, opts ...PortletOption) (*Portlet[T], error) {
	cfg := portletConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	res, err := signal.New(coord, None[T]())
	if err != nil {
		return nil, ErrMissingCoordinator.Wrap(err)
	}
	return &Portlet[T]{res: res, logger: cfg.logger}, nil
}

// MustNew is New, panicking on a nil coordinator.
func MustNew[T any](coord *ready.Coordinator, opts ...PortletOption) *Portlet[T] {
	p, err := New[T](coord, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Clear empties the portlet without touching readiness state. Render
// produces nothing for an empty portlet.
func (p *Portlet[T]) Clear() {
	p.res.SetUntracked(None[T]())
}

// Set fills the portlet and releases any waiting renderer.
func (p *Portlet[T]) Set(v T) {
	p.res.WithWriter(func(w *signal.WriteSignal[Option[T]]) {
		w.Set(Some(v))
	})
}

// UpdateWith fills the portlet from a fetcher running on its own
// goroutine. The write evidence is acquired before the goroutine is
// spawned — before any suspension point — so the paired renderer keeps
// waiting for the fetched value even after the enclosing boundary
// exits. The returned channel closes once the value has been written.
//
// A fetcher returning ok=false clears the portlet; either way the
// write resolves the renderer's wait.
func (p *Portlet[T]) UpdateWith(ctx context.Context, fetch func(context.Context) (T, bool)) <-chan struct{} {
	w := p.res.WriteOnlyManual()
	done := make(chan struct{})
	go func() {
		defer close(done)
		v, ok := fetch(ctx)
		if ok {
			w.Set(Some(v))
		} else {
			w.Set(None[T]())
		}
	}()
	return done
}

// Resolve waits for the portlet's value per the pairing's readiness
// semantics and returns the latest state: Some once a producer wrote,
// None when the boundary exited with no producer outstanding.
func (p *Portlet[T]) Resolve(ctx context.Context) (Option[T], error) {
	return p.res.ReadOnly().Await(ctx)
}

// Render resolves the portlet and renders its value with render,
// returning the empty string for an empty portlet — the optionally
// rendered half of the pattern.
func (p *Portlet[T]) Render(ctx context.Context, render func(T) string) (string, error) {
	opt, err := p.Resolve(ctx)
	if err != nil {
		return "", err
	}
	v, ok := opt.Get()
	if !ok {
		return "", nil
	}
	return render(v), nil
}

// State resolves the portlet and returns its value as a JSON payload
// suitable for embedding as the hydration state of the rendered page.
func (p *Portlet[T]) State(ctx context.Context) ([]byte, error) {
	opt, err := p.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(opt)
}
