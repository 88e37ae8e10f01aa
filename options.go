package succinct

import (
	"github.com/hupe1980/succinct/persistence"
)

type options struct {
	codec       persistence.Codec
	logger      *Logger
	concurrency int
}

// Option configures Store behavior.
type Option func(*options)

// WithCodec configures the compression codec used when saving snapshots.
// Loading auto-detects the codec from the snapshot header.
func WithCodec(c persistence.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithLogger configures the logger used by the store.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithConcurrency limits the number of parallel uploads in SaveAll.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.concurrency = n
		}
	}
}
