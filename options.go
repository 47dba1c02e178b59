package deque

import "log/slog"

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger used for composite-operation debug logging.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// Exclusive enables the at-most-once membership policy on the four
// mutating operations. Append and AppendLeft become membership-checked
// no-ops when the value is already present; Pop and PopLeft strip any
// remaining occurrences of the returned value after removing it.
//
// The policy composes atomic store calls and is therefore not itself
// atomic: a concurrent writer can slip a duplicate in between the
// membership scan and the push, or re-insert a value between a pop and
// its cleanup. The at-most-once guarantee holds only while all mutations
// come from a single logical caller at a time.
func Exclusive() Option {
	return func(q *Queue) {
		q.exclusive = true
	}
}
