package debounce

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Harsh100101/Book-Recommendation-System/internal/client/loop"
)

// Timer arms one clock timer per Set and calls onChange on the loop when a
// value stabilises. All methods must be called on the loop.
type Timer[T any] struct {
	d        *Debouncer[T]
	clock    clockwork.Clock
	loop     *loop.Loop
	onChange func(T)

	timer   clockwork.Timer
	stopped bool
}

func NewTimer[T any](l *loop.Loop, clock clockwork.Clock, delay time.Duration, initial T, onChange func(T)) *Timer[T] {
	return &Timer[T]{
		d:        New(delay, initial),
		clock:    clock,
		loop:     l,
		onChange: onChange,
	}
}

func (t *Timer[T]) Set(v T) {
	if t.stopped {
		return
	}
	t.d.Set(v, t.clock.Now())
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = t.clock.AfterFunc(t.d.Delay(), t.fire)
}

// fire runs on the clock's goroutine. A firing that raced with a later Set
// reaches Advance before the new deadline and is ignored there.
func (t *Timer[T]) fire() {
	t.loop.Post(func() {
		if t.stopped {
			return
		}
		if v, ok := t.d.Advance(t.clock.Now()); ok {
			t.onChange(v)
		}
	})
}

func (t *Timer[T]) Value() T {
	return t.d.Value()
}

// Pending reports whether a value is waiting to stabilise.
func (t *Timer[T]) Pending() bool {
	_, ok := t.d.Pending()
	return ok
}

// Stop cancels the pending value for good. Later Sets are ignored.
func (t *Timer[T]) Stop() {
	t.stopped = true
	t.d.Cancel()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
