package session

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/termsplit/internal/input"
	"github.com/sadopc/termsplit/internal/logging"
	"github.com/sadopc/termsplit/internal/tui"
)

type fakeSource struct {
	events chan input.Event
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan input.Event, 16)}
}

func (s *fakeSource) Next(ctx context.Context) (input.Action, error) {
	select {
	case ev := <-s.events:
		return ev.Action, ev.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *fakeSource) send(actions ...input.Action) {
	for _, a := range actions {
		s.events <- input.Event{Action: a}
	}
}

type fakeDisplay struct {
	mu       sync.Mutex
	redraws  []tui.View
	live     int
	messages [][]string
	errs     []error
}

func (d *fakeDisplay) Redraw(v tui.View) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.redraws = append(d.redraws, v)
	return nil
}

func (d *fakeDisplay) DrawLive(v tui.View) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live++
	return nil
}

func (d *fakeDisplay) Message(lines ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, lines)
	return nil
}

func (d *fakeDisplay) Error(err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs = append(d.errs, err)
	return nil
}

func (d *fakeDisplay) lastState() tui.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.redraws) == 0 {
		return -1
	}
	return d.redraws[len(d.redraws)-1].State
}

func (d *fakeDisplay) liveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

type runnerHarness struct {
	ctl  *Controller
	src  *fakeSource
	out  *fakeDisplay
	done chan error
}

func startRunner(t *testing.T, ctx context.Context, names ...string) *runnerHarness {
	t.Helper()
	ctl, _, _ := newController(t, names...)
	h := &runnerHarness{ctl: ctl, src: newFakeSource(), out: &fakeDisplay{}, done: make(chan error, 1)}
	r := NewRunner(ctl, h.src, h.out, RunnerOptions{
		Interval: time.Millisecond,
		Help:     []string{"help line"},
		Log:      logging.Discard(),
	})
	go func() { h.done <- r.Run(ctx) }()
	return h
}

// wait returns Run's result; the controller may be inspected afterwards.
func (h *runnerHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

func TestRunnerQuit(t *testing.T) {
	h := startRunner(t, context.Background(), "a", "b")
	h.src.send(input.Quit)

	require.NoError(t, h.wait(t))
	assert.Len(t, h.out.redraws, 1, "initial draw only")
	assert.Equal(t, Idle, h.out.redraws[0].State)
}

func TestRunnerAppliesActions(t *testing.T) {
	h := startRunner(t, context.Background(), "a", "b")
	h.src.send(input.Split, input.Split, input.Skip, input.Pause, input.Pause, input.Unsplit, input.Quit)

	require.NoError(t, h.wait(t))
	assert.Equal(t, Running, h.ctl.State())
	assert.Equal(t, 0, h.ctl.Run().Len())

	states := make([]tui.State, 0, len(h.out.redraws))
	for _, v := range h.out.redraws {
		states = append(states, v.State)
	}
	// initial, split, split, skip (no-op, still redrawn), pause, resume, unsplit
	assert.Equal(t, []tui.State{Idle, Running, Running, Running, Paused, Running, Running}, states)
}

func TestRunnerStopResets(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.src.send(input.Split, input.Split, input.Stop, input.Quit)

	require.NoError(t, h.wait(t))
	assert.Equal(t, Idle, h.ctl.State())
	assert.NotNil(t, h.ctl.Ledger().Splits[0].PB)
	assert.True(t, h.out.redraws[len(h.out.redraws)-1].Dirty)
}

func TestRunnerRendersOnlyWhileRunning(t *testing.T) {
	h := startRunner(t, context.Background(), "a", "b")

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.out.liveCount(), "idle session is not polled")

	h.src.send(input.Split)
	assert.Eventually(t, func() bool { return h.out.liveCount() > 3 }, 2*time.Second, time.Millisecond)

	h.src.send(input.Pause)
	require.Eventually(t, func() bool { return h.out.lastState() == Paused }, 2*time.Second, time.Millisecond)
	n := h.out.liveCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, h.out.liveCount(), "paused session is not polled")

	h.src.send(input.Quit)
	require.NoError(t, h.wait(t))
}

func TestRunnerHelpAndRedraw(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.src.send(input.Help, input.Redraw, input.Quit)

	require.NoError(t, h.wait(t))
	assert.Equal(t, [][]string{{"help line"}}, h.out.messages)
	assert.Len(t, h.out.redraws, 2)
}

func TestRunnerSave(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.src.send(input.Split, input.Split, input.Stop, input.Save, input.Quit)

	require.NoError(t, h.wait(t))
	assert.False(t, h.ctl.Dirty())
	_, err := os.Stat(h.ctl.Path())
	require.NoError(t, err)
	require.Len(t, h.out.messages, 1)
	assert.Contains(t, h.out.messages[0][0], "Saved")
	assert.False(t, h.out.redraws[len(h.out.redraws)-1].Dirty)
}

func TestRunnerSaveFailureContinues(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.ctl.path = filepath.Join(t.TempDir(), "missing", "a.splits")
	h.src.send(input.Save, input.Split, input.Quit)

	require.NoError(t, h.wait(t))
	require.Len(t, h.out.errs, 1)
	assert.Equal(t, Running, h.ctl.State(), "session continues after a failed save")
}

func TestRunnerReload(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.src.send(input.Save)
	require.Eventually(t, func() bool {
		h.out.mu.Lock()
		defer h.out.mu.Unlock()
		return len(h.out.messages) == 1
	}, 2*time.Second, time.Millisecond)

	require.NoError(t, os.WriteFile(h.ctl.Path(), []byte("x\t1\t1\ny\t2\t3\n"), 0o644))
	h.src.send(input.Reload, input.Quit)

	require.NoError(t, h.wait(t))
	assert.Equal(t, 2, h.ctl.Ledger().Len())
	last := h.out.redraws[len(h.out.redraws)-1]
	assert.Equal(t, "y", last.Ledger.Splits[1].Name)
	assert.Contains(t, h.out.messages[1][0], "Reloaded")
}

func TestRunnerInputError(t *testing.T) {
	h := startRunner(t, context.Background(), "a")
	h.src.events <- input.Event{Err: io.ErrUnexpectedEOF}

	err := h.wait(t)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "input:")
}

func TestRunnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := startRunner(t, ctx, "a", "b")
	h.src.send(input.Split)
	require.Eventually(t, func() bool { return h.out.liveCount() > 0 }, 2*time.Second, time.Millisecond)

	cancel()
	err := h.wait(t)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
