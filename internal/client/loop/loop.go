// Package loop provides the single logical thread the client components run
// on. Component state is only touched from tasks executed by a Loop, so the
// components themselves need no locking. Blocking work (network, disk) runs on
// goroutines started with Go and hands its result back as a task.
package loop

import (
	"context"
	"sync"
)

// Loop is a FIFO task queue drained by exactly one goroutine at a time,
// either Run or the caller of Flush.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It is safe to call from any goroutine and reports false
// when the loop is closed, in which case fn never runs.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do posts fn and waits until it has run. It returns false when the loop is
// closed before fn runs.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	if !l.Post(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// Flush runs queued tasks on the calling goroutine until the queue is empty,
// including tasks posted while flushing, and returns how many ran. It must not
// be called while Run is active.
func (l *Loop) Flush() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run drains the queue until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Flush()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Close drops pending tasks and rejects new ones. It is idempotent.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}

// Go runs call on a new goroutine and applies its result on the loop. The
// result is dropped when ctx is cancelled before apply gets to run, which is
// how an owner that went away stops hearing from its requests.
func Go[T any](l *Loop, ctx context.Context, call func(context.Context) (T, error), apply func(T, error)) {
	go func() {
		v, err := call(ctx)
		if ctx.Err() != nil {
			return
		}
		l.Post(func() {
			if ctx.Err() != nil {
				return
			}
			apply(v, err)
		})
	}()
}
