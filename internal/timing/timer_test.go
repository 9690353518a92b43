package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeTimer(t *testing.T) (*Timer, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	tm := NewWithClock(clk.Now)
	require.NoError(t, tm.Start())
	return tm, clk
}

func TestUnstarted(t *testing.T) {
	tm := New()
	_, err := tm.Elapsed()
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = tm.Mark(false)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, tm.Pause(), ErrInvalidState)
	assert.False(t, tm.Started())
}

func TestStartTwice(t *testing.T) {
	tm, _ := newFakeTimer(t)
	assert.ErrorIs(t, tm.Start(), ErrAlreadyStarted)
}

func TestMarkAndUnmark(t *testing.T) {
	tm, clk := newFakeTimer(t)

	clk.Advance(3 * time.Second)
	d, err := tm.Mark(false)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	clk.Advance(2 * time.Second)
	d, err = tm.Mark(true)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	assert.Equal(t, 1, tm.Marks())

	d, err = tm.Mark(false)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
	assert.Equal(t, 5*time.Second, tm.LastMark())

	// undo the second mark: the next one measures from the first
	tm.Unmark()
	clk.Advance(time.Second)
	d, err = tm.Mark(false)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	total, err := tm.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, total)
}

func TestUnmarkEmpty(t *testing.T) {
	tm, clk := newFakeTimer(t)
	tm.Unmark()
	clk.Advance(time.Second)
	d, err := tm.Mark(false)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestPauseFreezesElapsed(t *testing.T) {
	tm, clk := newFakeTimer(t)

	clk.Advance(4 * time.Second)
	require.NoError(t, tm.Pause())
	assert.True(t, tm.Paused())

	clk.Advance(10 * time.Second)
	d, err := tm.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, d)

	require.NoError(t, tm.Pause())
	assert.False(t, tm.Paused())
	clk.Advance(time.Second)
	d, err = tm.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	seg, err := tm.Mark(false)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, seg)
}

func TestRepeatedPauses(t *testing.T) {
	tm, clk := newFakeTimer(t)
	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		require.NoError(t, tm.Pause())
		clk.Advance(time.Minute)
		require.NoError(t, tm.Pause())
	}
	d, err := tm.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestCloneIndependent(t *testing.T) {
	tm, clk := newFakeTimer(t)
	clk.Advance(time.Second)
	_, err := tm.Mark(false)
	require.NoError(t, err)

	c := tm.Clone()
	tm.Unmark()
	assert.Equal(t, 1, c.Marks())
	assert.Equal(t, 0, tm.Marks())

	clk.Advance(time.Second)
	d, err := c.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)
}

func TestRealClock(t *testing.T) {
	tm := New()
	require.NoError(t, tm.Start())
	time.Sleep(20 * time.Millisecond)
	d, err := tm.Mark(false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, 20*time.Millisecond)
	assert.Less(t, d, 2*time.Second)
}
