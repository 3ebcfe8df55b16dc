package service

import (
	"time"

	"github.com/JonnyWalker81/innerlog/backend/internal/lock"
)

// Option configures optional collaborators shared by the services
type Option func(*options)

type options struct {
	now    func() time.Time
	locker lock.Locker
}

// WithClock overrides the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLocker sets the per-user lock shared with the streak service.
// Achievement writes take the same key as streak mutations.
func WithLocker(l lock.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
