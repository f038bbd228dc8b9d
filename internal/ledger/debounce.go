package ledger

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// Timer is a handle to a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules with the runtime timer.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer delivers only the last value of a burst of triggers, delay after
// that last trigger. Each trigger stops the previously scheduled timer.
type Debouncer[T any] struct {
	scheduler Scheduler
	timer     Timer
	emit      func(T)
	value     T
	delay     time.Duration
	gen       uint64
	mu        sync.Mutex
	pending   bool
	closed    bool
}

// NewDebouncer returns a debouncer calling emit with the settled value.
func NewDebouncer[T any](delay time.Duration, scheduler Scheduler, emit func(T)) *Debouncer[T] {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	return &Debouncer[T]{delay: delay, scheduler: scheduler, emit: emit}
}

// Trigger supersedes any pending value with v and restarts the delay.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.value = v
	d.pending = true
	d.timer = d.scheduler.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.emit(v)
}

// Flush emits the pending value immediately, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.closed || !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	v := d.value
	d.pending = false
	d.mu.Unlock()

	d.emit(v)
}

// Cancel drops the pending value without emitting it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer[T]) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	var zero T
	d.value = zero
}

// Close cancels any pending value and ignores later triggers.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.closed = true
}

// Pending reports whether a value is waiting to be emitted.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
