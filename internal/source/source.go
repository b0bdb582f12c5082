package source

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds every adapter call.
const DefaultTimeout = 15 * time.Second

// ErrUnavailable marks a fetch that produced no usable data.
var ErrUnavailable = errors.New("source unavailable")

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

func unavailableErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	timeout time.Duration
	now     func() time.Time
}

func defaultOptions() options {
	return options{
		timeout: DefaultTimeout,
		now:     time.Now,
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClock overrides the wall clock used to stamp observations.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
