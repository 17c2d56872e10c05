package ready

import "log/slog"

// config carries the optional collaborators shared by the readiness
// primitives.
type config struct {
	logger   *slog.Logger
	observer Observer
}

// Option configures a Ready or a Coordinator.
type Option func(*config)

// WithLogger sets the slog logger used for debug-level coordination
// tracing. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithObserver sets the observer notified of coordination events.
// Defaults to none.
func WithObserver(obs Observer) Option {
	return func(c *config) {
		c.observer = obs
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
