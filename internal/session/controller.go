// Package session drives one timing session: the controller state machine
// over a splits ledger, and the runner that feeds it actions and keeps the
// screen up to date.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/store"
	"github.com/sadopc/termsplit/internal/timing"
	"github.com/sadopc/termsplit/internal/tui"
)

// State is the session lifecycle state.
type State = tui.State

const (
	Idle     = tui.StateIdle
	Running  = tui.StateRunning
	Paused   = tui.StatePaused
	Finished = tui.StateFinished
)

// ErrReloadBusy is returned by Reload when the file changed on disk but the
// ledger has unsaved changes or a run is in progress.
var ErrReloadBusy = errors.New("splits file changed on disk; keeping the ledger in memory")

// Recorder stores finished and abandoned attempts.
type Recorder interface {
	RecordAttempt(a *store.Attempt) error
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	Clock   func() time.Time
	History Recorder
	Log     *slog.Logger
}

// Controller owns the ledger, the current run and its timer. It is not
// safe for concurrent use: one goroutine drives it and publishes View
// snapshots for everyone else.
type Controller struct {
	log     *slog.Logger
	clock   func() time.Time
	history Recorder

	path   string
	ledger *splits.Ledger
	saved  *splits.Ledger

	state     State
	run       *splits.Run
	timer     *timing.Timer
	startedAt time.Time
}

// New returns an idle controller for ledger l, which was read from (or will
// be saved to) path.
func New(path string, l *splits.Ledger, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Controller{
		log:     opts.Log,
		clock:   opts.Clock,
		history: opts.History,
		path:    path,
		ledger:  l,
		saved:   l.Clone(),
	}
}

// Open loads the splits file at path.
func Open(path string, opts Options) (*Controller, error) {
	l, err := splits.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, l, opts), nil
}

func (c *Controller) State() State { return c.state }

// Path is the splits file the ledger is saved to.
func (c *Controller) Path() string { return c.path }

func (c *Controller) Ledger() *splits.Ledger { return c.ledger }

func (c *Controller) Run() *splits.Run { return c.run }

// Dirty reports whether the ledger differs from the last saved copy.
func (c *Controller) Dirty() bool { return !c.ledger.Equal(c.saved) }

// Split starts a run when idle. While running it records the next split,
// and finishes the run when that was the last one. A split following a
// skip has no segment time. Once the run has
// started, exactly Ledger().Len() splits finish it.
func (c *Controller) Split() error {
	switch c.state {
	case Idle:
		if c.ledger.Len() == 0 {
			return nil
		}
		t := timing.NewWithClock(c.clock)
		if err := t.Start(); err != nil {
			return err
		}
		c.timer = t
		c.run = &splits.Run{}
		c.startedAt = c.clock()
		c.state = Running
		c.log.Info("run started", "splits", c.path)
	case Running:
		seg, err := c.timer.Mark(false)
		if err != nil {
			return err
		}
		// after a skip the mark spans several segments, so only the
		// cumulative time is meaningful
		segment := splits.Dur(seg)
		if n := c.run.Len(); n > 0 && c.run.Records[n-1].Skipped() {
			segment = nil
		}
		c.run.Append(segment, splits.Dur(c.timer.LastMark()))
		c.log.Debug("split", "index", c.run.Len()-1, "segment", seg)
		if c.run.Len() >= c.ledger.Len() {
			c.state = Finished
			c.log.Info("run finished", "time", splits.FormatTime(c.run.Last()))
		}
	}
	return nil
}

// Unsplit removes the most recent split. A skipped split holds no mark, so
// removing it leaves the timer alone.
func (c *Controller) Unsplit() error {
	if c.state != Running || c.run.Len() == 0 {
		return nil
	}
	rec, _ := c.run.Pop()
	if !rec.Skipped() {
		c.timer.Unmark()
	}
	c.log.Debug("unsplit", "index", c.run.Len(), "marks", c.timer.Marks())
	return nil
}

// Skip consumes the next split without a time. The last split cannot be
// skipped.
func (c *Controller) Skip() error {
	if c.state != Running || c.run.Len() >= c.ledger.Len()-1 {
		return nil
	}
	c.run.Append(nil, nil)
	return nil
}

// Pause pauses a running run or resumes a paused one.
func (c *Controller) Pause() error {
	switch c.state {
	case Running, Paused:
	default:
		return nil
	}
	if err := c.timer.Pause(); err != nil {
		return err
	}
	if c.timer.Paused() {
		c.state = Paused
	} else {
		c.state = Running
	}
	return nil
}

// Reset ends the run, finished or not: its times are merged into the
// ledger, the attempt is recorded and the session returns to idle.
func (c *Controller) Reset() error {
	if c.state == Idle {
		return nil
	}
	changed := c.ledger.Merge(c.run)
	c.record()
	c.log.Info("run reset", "state", c.state.String(), "ledger_changed", changed)

	c.run = nil
	c.timer = nil
	c.state = Idle
	return nil
}

func (c *Controller) record() {
	if c.history == nil {
		return
	}
	a := &store.Attempt{
		Ledger:    c.path,
		StartedAt: c.startedAt,
		EndedAt:   c.clock(),
		Completed: c.state == Finished,
	}
	if a.Completed {
		a.Final = c.run.Last()
	}
	for i, rec := range c.run.Records {
		a.Splits = append(a.Splits, store.AttemptSplit{
			Index:      i,
			Name:       c.ledger.Splits[i].Name,
			Segment:    rec.Segment,
			Cumulative: rec.Cumulative,
		})
	}
	if err := c.history.RecordAttempt(a); err != nil {
		c.log.Error("record attempt", "err", err)
		return
	}
	c.log.Debug("attempt recorded", "id", a.ID)
}

// Save writes the ledger to its file.
func (c *Controller) Save() error {
	return c.SaveAs(c.path)
}

// SaveAs writes the ledger to path, which becomes the ledger's file.
func (c *Controller) SaveAs(path string) error {
	if err := c.ledger.SaveFile(path); err != nil {
		return err
	}
	c.path = path
	c.saved = c.ledger.Clone()
	c.log.Info("ledger saved", "path", path)
	return nil
}

// Reload re-reads the splits file after it changed on disk. It reports
// whether the ledger was replaced; an unchanged file is ignored, and a
// changed one is refused with ErrReloadBusy while a run is active or
// there are unsaved changes.
func (c *Controller) Reload() (bool, error) {
	l, err := splits.LoadFile(c.path)
	if err != nil {
		return false, fmt.Errorf("reload: %w", err)
	}
	if l.Equal(c.saved) {
		return false, nil
	}
	if c.state != Idle || c.Dirty() {
		return false, ErrReloadBusy
	}
	c.ledger = l
	c.saved = l.Clone()
	c.log.Info("ledger reloaded", "path", c.path)
	return true, nil
}

// View returns a snapshot that stays valid while the controller moves on.
func (c *Controller) View() tui.View {
	v := tui.View{
		Ledger: c.ledger.Clone(),
		Run:    c.run.Clone(),
		State:  c.state,
		Dirty:  c.Dirty(),
	}
	if c.timer != nil {
		v.Timer = c.timer.Clone()
	}
	return v
}
