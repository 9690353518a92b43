// Package timing provides the run timer: a pausable stopwatch on the
// monotonic clock with a stack of marks used to measure segments.
package timing

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState is wrapped by every error caused by calling a timer
// operation in the wrong lifecycle state.
var ErrInvalidState = errors.New("invalid timer state")

var (
	ErrNotStarted     = fmt.Errorf("timer is not started: %w", ErrInvalidState)
	ErrAlreadyStarted = fmt.Errorf("timer already started: %w", ErrInvalidState)
)

// Timer is a stateful stopwatch. It cannot be stopped or reset; make a new
// one per run. Timer is not safe for concurrent use.
type Timer struct {
	now func() time.Time

	origin  time.Time     // start of the current unpaused stretch
	banked  time.Duration // elapsed time before origin
	started bool
	paused  bool
	marks   []time.Duration
}

// New returns an unstarted timer on the system monotonic clock.
func New() *Timer {
	return NewWithClock(time.Now)
}

// NewWithClock returns an unstarted timer reading time from now.
func NewWithClock(now func() time.Time) *Timer {
	return &Timer{now: now}
}

// Start begins timing. It may only be called once.
func (t *Timer) Start() error {
	if t.started {
		return ErrAlreadyStarted
	}
	t.origin = t.now()
	t.started = true
	return nil
}

func (t *Timer) Started() bool { return t.started }

func (t *Timer) Paused() bool { return t.paused }

// Elapsed returns the time since Start, excluding time spent paused.
func (t *Timer) Elapsed() (time.Duration, error) {
	if !t.started {
		return 0, ErrNotStarted
	}
	return t.elapsed(t.now()), nil
}

func (t *Timer) elapsed(now time.Time) time.Duration {
	if t.paused {
		return t.banked
	}
	return t.banked + now.Sub(t.origin)
}

// Pause toggles between running and paused. Elapsed stays continuous
// across a pause and its resume.
func (t *Timer) Pause() error {
	if !t.started {
		return ErrNotStarted
	}
	now := t.now()
	if t.paused {
		t.origin = now
		t.paused = false
		return nil
	}
	t.banked = t.elapsed(now)
	t.paused = true
	return nil
}

// Mark returns the time elapsed since the most recent mark (or since Start
// when there is none). Unless peek is set, the current time becomes the new
// mark.
func (t *Timer) Mark(peek bool) (time.Duration, error) {
	if !t.started {
		return 0, ErrNotStarted
	}
	now := t.elapsed(t.now())
	since := now - t.LastMark()
	if !peek {
		t.marks = append(t.marks, now)
	}
	return since, nil
}

// Unmark drops the most recent mark, so the next Mark measures from the one
// before it. It does nothing when there are no marks.
func (t *Timer) Unmark() {
	if len(t.marks) > 0 {
		t.marks = t.marks[:len(t.marks)-1]
	}
}

// LastMark is the elapsed time of the most recent mark, or zero.
func (t *Timer) LastMark() time.Duration {
	if len(t.marks) == 0 {
		return 0
	}
	return t.marks[len(t.marks)-1]
}

// Marks reports the depth of the mark stack.
func (t *Timer) Marks() int { return len(t.marks) }

// Clone returns an independent copy sharing the same clock.
func (t *Timer) Clone() *Timer {
	c := *t
	c.marks = append([]time.Duration(nil), t.marks...)
	return &c
}
