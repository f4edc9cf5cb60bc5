package sigstore

import "log/slog"

// Observer receives bridge lifecycle events, e.g. for metrics.
type Observer interface {
	ScopeActivated(store string)
	ScopeDeactivated(store string)
	SubscriptionEstablished(cells int)
	SubscriptionDisposed()
	RerenderRequested(component string)
}

type options struct {
	observer Observer
	logger   *slog.Logger
	name     string
}

// Option configures a Definition, or a Session created by UseSignalState.
type Option func(*options)

// WithObserver installs an Observer.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the logger used for scope lifecycle debug logs.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithName labels the sessions' re-render requests. Bind uses the
// component name.
func WithName(name string) Option {
	return func(opts *options) { opts.name = name }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
