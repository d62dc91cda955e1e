// Package debounce delays propagation of a changing value until it has been
// stable for a fixed interval.
//
// Debouncer is the pure state machine (Idle or Pending with a deadline) and
// knows nothing about real time; Timer drives one from a clockwork.Clock and
// delivers the stabilised value on a loop.Loop.
package debounce

import "time"

type Debouncer[T any] struct {
	delay time.Duration

	pending  bool
	deadline time.Time
	next     T

	value T
}

// New returns an idle Debouncer whose stabilised value starts as initial.
func New[T any](delay time.Duration, initial T) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, value: initial}
}

func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Set records v as the latest input at now. A value that was still pending is
// discarded and the deadline restarts.
func (d *Debouncer[T]) Set(v T, now time.Time) {
	d.pending = true
	d.deadline = now.Add(d.delay)
	d.next = v
}

// Advance propagates the pending value once now has reached the deadline.
func (d *Debouncer[T]) Advance(now time.Time) (T, bool) {
	if !d.pending || now.Before(d.deadline) {
		var zero T
		return zero, false
	}
	d.pending = false
	d.value = d.next
	var zero T
	d.next = zero
	return d.value, true
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	var zero T
	d.pending = false
	d.next = zero
}

// Value is the last propagated value.
func (d *Debouncer[T]) Value() T {
	return d.value
}

// Pending returns the deadline of the pending value.
func (d *Debouncer[T]) Pending() (time.Time, bool) {
	return d.deadline, d.pending
}
