package cilsil

import (
	"runtime"

	"github.com/deepnoodle-ai/cilsil/translator"
	"github.com/rs/zerolog"
)

// Option configures an assembly translation.
type Option func(*options)

type options struct {
	workers         int
	failFast        bool
	logger          zerolog.Logger
	policy          translator.LeavePolicy
	maxSteps        int
	observer        translator.Observer
	skipExceptional bool
}

func collectOptions(opts ...Option) *options {
	o := &options{
		workers: runtime.GOMAXPROCS(0),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

func (o *options) translatorOpts() []translator.Option {
	opts := []translator.Option{
		translator.WithLeavePolicy(o.policy),
		translator.WithMaxSteps(o.maxSteps),
	}
	if o.observer != nil {
		opts = append(opts, translator.WithObserver(o.observer))
	}
	if o.skipExceptional {
		opts = append(opts, translator.WithoutExceptionalEdges())
	}
	return opts
}

// WithWorkers sets the number of methods translated concurrently. The
// default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithFailFast stops the run at the first method that fails with a fatal
// error. Methods not yet started are reported as skipped.
func WithFailFast() Option {
	return func(o *options) {
		o.failFast = true
	}
}

// WithLogger sets the logger. Nothing is logged by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLeavePolicy selects how leave instructions are wired.
func WithLeavePolicy(policy translator.LeavePolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithMaxSteps caps the work-list steps spent on any one method.
func WithMaxSteps(steps int) Option {
	return func(o *options) {
		o.maxSteps = steps
	}
}

// WithObserver sets an observer notified during every method translation.
// The observer is shared by all workers and must be safe for concurrent use
// unless the worker count is one.
func WithObserver(observer translator.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithoutExceptionalEdges omits the edges from try blocks to their handlers.
func WithoutExceptionalEdges() Option {
	return func(o *options) {
		o.skipExceptional = true
	}
}
