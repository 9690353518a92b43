package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/termsplit/internal/input"
	"github.com/sadopc/termsplit/internal/tui"
)

// DefaultInterval is the live refresh period while a run is active.
const DefaultInterval = 30 * time.Millisecond

// Events is the merged action stream.
type Events interface {
	Next(ctx context.Context) (input.Action, error)
}

// Display is the output surface. Implementations serialize their own
// writes; tui.Screen is the terminal one.
type Display interface {
	Redraw(v tui.View) error
	DrawLive(v tui.View) error
	Message(lines ...string) error
	Error(err error) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Interval time.Duration
	Help     []string // shown for the HELP action
	Log      *slog.Logger
}

// Runner runs a session: a dispatch task applies actions to the controller
// and a render task refreshes the live row while the run is active.
type Runner struct {
	ctl  *Controller
	src  Events
	out  Display
	opts RunnerOptions

	// mu orders snapshot publication with drawing, so the render task never
	// paints a snapshot older than the one dispatch last drew.
	mu     sync.Mutex
	cond   *sync.Cond
	view   tui.View
	active bool
	done   bool
}

func NewRunner(ctl *Controller, src Events, out Display, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	r := &Runner{ctl: ctl, src: src, out: out, opts: opts}
	r.cond = sync.NewCond(&r.mu)
	return r
}

var errQuit = errors.New("quit")

// Run draws the ledger and processes actions until QUIT (nil), a failed
// input (wrapped error) or ctx cancellation (ctx.Err()).
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		r.done = true
		r.mu.Unlock()
		r.cond.Broadcast()
	})
	defer stop()

	if err := r.publish(); err != nil {
		return err
	}

	g.Go(func() error {
		defer cancel()
		err := r.dispatch(ctx)
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return r.render(ctx)
	})
	return g.Wait()
}

func (r *Runner) dispatch(ctx context.Context) error {
	for {
		a, err := r.src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input: %w", err)
		}
		r.opts.Log.Debug("action", "action", string(a), "state", r.ctl.State().String())
		if err := r.handle(a); err != nil {
			return err
		}
	}
}

func (r *Runner) handle(a input.Action) error {
	var err error
	switch a {
	case input.Split:
		err = r.ctl.Split()
	case input.Unsplit:
		err = r.ctl.Unsplit()
	case input.Skip:
		err = r.ctl.Skip()
	case input.Pause:
		err = r.ctl.Pause()
	case input.Stop:
		err = r.ctl.Reset()
	case input.Help:
		return r.out.Message(r.opts.Help...)
	case input.Save:
		if err := r.ctl.Save(); err != nil {
			r.opts.Log.Error("save", "path", r.ctl.Path(), "err", err)
			return r.out.Error(err)
		}
		if err := r.publish(); err != nil {
			return err
		}
		return r.out.Message("Saved " + r.ctl.Path())
	case input.Quit:
		return errQuit
	case input.Redraw:
	case input.Reload:
		return r.reload()
	default:
		r.opts.Log.Warn("unhandled action", "action", string(a))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	return r.publish()
}

func (r *Runner) reload() error {
	changed, err := r.ctl.Reload()
	switch {
	case errors.Is(err, ErrReloadBusy):
		return r.out.Message(err.Error())
	case err != nil:
		r.opts.Log.Warn("reload", "err", err)
		return r.out.Error(err)
	case !changed:
		return nil
	}
	if err := r.publish(); err != nil {
		return err
	}
	return r.out.Message("Reloaded " + r.ctl.Path())
}

// publish snapshots the controller, redraws from it and wakes the render
// task when the run is active.
func (r *Runner) publish() error {
	v := r.ctl.View()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.view = v
	r.active = v.State == Running
	if r.active {
		r.cond.Broadcast()
	}
	return r.out.Redraw(v)
}

// waitActive blocks until the run is active. It returns false on teardown.
func (r *Runner) waitActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for !r.active && !r.done {
		r.cond.Wait()
	}
	return !r.done
}

func (r *Runner) render(ctx context.Context) error {
	tick := time.NewTicker(r.opts.Interval)
	defer tick.Stop()

	for r.waitActive() {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		if err := r.drawLive(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) drawLive() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return nil
	}
	return r.out.DrawLive(r.view)
}
