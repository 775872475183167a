package debug

import "log/slog"

type options struct {
	logger  *slog.Logger
	verbose bool
}

// Option is a configuration option for Allocator.
type Option func(*options)

// WithLogger sets the logger used to report target failures and, in verbose
// mode, every call. A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithVerbose logs every call at debug level. Has no effect without
// WithLogger.
func WithVerbose(v bool) Option {
	return func(o *options) {
		o.verbose = v
	}
}
