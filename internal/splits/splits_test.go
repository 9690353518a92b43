package splits

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Duration
	}{
		{"", nil},
		{"   ", nil},
		{"3661.05", Seconds(3661.05)},
		{"61:01.05", Seconds(3661.05)},
		{"61:1.05", Seconds(3661.05)},
		{"1:01:01.05", Seconds(3661.05)},
		{"1:1:1.05", Seconds(3661.05)},
		{"1:01:01.050", Seconds(3661.05)},
		{"00:31", Seconds(31)},
		{" 0:0.5 ", Seconds(0.5)},
		{"1: 30", Seconds(90)},
		{"1 :30.5", Seconds(90.5)},
		{" 1 : 01 : 01.05 ", Seconds(3661.05)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseTimeMalformed(t *testing.T) {
	for _, in := range []string{"1:2:3:4", "abc", "1:x:3", "1.5:00", "NaN", "inf", "1: :3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseTime(in)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, in, fe.Value)
			assert.Contains(t, err.Error(), in)
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   *time.Duration
		want string
	}{
		{nil, ""},
		{Seconds(3661.05), "1:01:01.050"},
		{Seconds(0), "00:00.000"},
		{Seconds(31), "00:31.000"},
		{Seconds(93), "01:33.000"},
		{Seconds(59.9996), "01:00.000"},
		{Seconds(-1.5), "-1.500"},
		{Dur(10 * time.Hour), "10:00:00.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in))
	}
}

const lapsFile = "First Lap\t00:31.000\t00:31.000\nSecond Lap\t00:30.000\t01:01.000\nThird Lap\t00:32.000\t01:33.000\n"

func TestParseLedger(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)
	require.Equal(t, 3, l.Len())
	assert.Equal(t, "Second Lap", l.Splits[1].Name)
	assert.Equal(t, 30*time.Second, *l.Splits[1].Best)
	assert.Equal(t, 61*time.Second, *l.Splits[1].PB)
}

func TestParseLedgerLenientColumns(t *testing.T) {
	data := "\nA\n\nB\t1.5\nC\t2\t3.5\textra\tmore\n\n"
	l, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 3, l.Len())

	assert.Nil(t, l.Splits[0].Best)
	assert.Nil(t, l.Splits[0].PB)
	assert.Equal(t, 1500*time.Millisecond, *l.Splits[1].Best)
	assert.Nil(t, l.Splits[1].PB)
	assert.Equal(t, 3500*time.Millisecond, *l.Splits[2].PB)
}

func TestParseLedgerBadField(t *testing.T) {
	_, err := Parse("A\t1\t2\nB\t1:2:3:4\t\n")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line)
	assert.Equal(t, "1:2:3:4", fe.Value)
	assert.True(t, errors.Is(err, errTooManySeparators))
}

func TestDumpRoundTrip(t *testing.T) {
	ledgers := []*Ledger{
		New(),
		New("a", "b"),
		{Splits: []Split{
			{Name: "x", Best: Seconds(3661.05), PB: Seconds(3661.05)},
			{Name: "y", Best: nil, PB: Seconds(7322.999)},
			{Name: "z", Best: Seconds(0.001), PB: nil},
			{Name: "neg", Best: Seconds(-2.25), PB: Seconds(0)},
		}},
	}
	for _, l := range ledgers {
		got, err := Parse(l.Dump())
		require.NoError(t, err)
		assert.True(t, l.Equal(got), "round trip of %q", l.Dump())
	}
}

func TestDumpFormat(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)
	assert.Equal(t, lapsFile, l.Dump())
	assert.True(t, strings.HasSuffix(New("a").Dump(), "\t\t\n"))
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laps.txt")
	l, err := Parse(lapsFile)
	require.NoError(t, err)

	require.NoError(t, l.SaveFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, lapsFile, string(data))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, l.Equal(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSaveFileMissingDir(t *testing.T) {
	err := New("a").SaveFile(filepath.Join(t.TempDir(), "nope", "laps.txt"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func runOf(segs, cums []float64) *Run {
	r := &Run{}
	for i := range segs {
		r.Append(Seconds(segs[i]), Seconds(cums[i]))
	}
	return r
}

func times(l *Ledger, pb bool) []time.Duration {
	var out []time.Duration
	for _, s := range l.Splits {
		d := s.Best
		if pb {
			d = s.PB
		}
		if d == nil {
			out = append(out, -1)
			continue
		}
		out = append(out, *d)
	}
	return out
}

func secs(vals ...float64) []time.Duration {
	out := make([]time.Duration, len(vals))
	for i, v := range vals {
		out[i] = *Seconds(v)
	}
	return out
}

func TestMergeKeepsPBOnTie(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)

	changed := l.Merge(runOf([]float64{28, 30, 35}, []float64{28, 58, 93}))
	assert.True(t, changed)
	assert.Equal(t, secs(28, 30, 32), times(l, false))
	assert.Equal(t, secs(31, 61, 93), times(l, true))
}

func TestMergeReplacesPBWhenFaster(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)

	l.Merge(runOf([]float64{28, 30, 32}, []float64{28, 58, 90}))
	assert.Equal(t, secs(28, 30, 32), times(l, false))
	assert.Equal(t, secs(28, 58, 90), times(l, true))
}

func TestMergeIncompleteRunLeavesPB(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)

	l.Merge(runOf([]float64{20, 20}, []float64{20, 40}))
	assert.Equal(t, secs(20, 20, 32), times(l, false))
	assert.Equal(t, secs(31, 61, 93), times(l, true))
}

func TestMergeIntoEmptyLedger(t *testing.T) {
	l := New("a", "b")
	l.Merge(runOf([]float64{5, 6}, []float64{5, 11}))
	assert.Equal(t, secs(5, 6), times(l, false))
	assert.Equal(t, secs(5, 11), times(l, true))
}

func TestMergeSkippedSplits(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)

	run := &Run{}
	run.Append(Seconds(25), Seconds(25))
	run.Append(nil, nil)
	run.Append(Seconds(60), Seconds(85))
	l.Merge(run)

	assert.Equal(t, secs(25, 30, 32), times(l, false))
	// the new PB column is taken wholesale, including the hole
	require.Nil(t, l.Splits[1].PB)
	assert.Equal(t, 25*time.Second, *l.Splits[0].PB)
	assert.Equal(t, 85*time.Second, *l.Splits[2].PB)
}

func TestMergeNeverWorsensBest(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)
	before := times(l, false)

	assert.False(t, l.Merge(runOf([]float64{40, 40, 40}, []float64{40, 80, 120})))
	assert.Equal(t, before, times(l, false))
	assert.False(t, l.Merge(nil))
}

func TestMergeRoundsToMillis(t *testing.T) {
	l := New("a")
	r := &Run{}
	r.Append(Dur(1234567891*time.Nanosecond), Dur(1234567891*time.Nanosecond))
	l.Merge(r)

	got, err := Parse(l.Dump())
	require.NoError(t, err)
	assert.True(t, l.Equal(got))
	assert.Equal(t, 1235*time.Millisecond, *l.Splits[0].Best)
}

func TestCloneIsIndependent(t *testing.T) {
	l, err := Parse(lapsFile)
	require.NoError(t, err)
	c := l.Clone()
	require.True(t, l.Equal(c))

	l.Merge(runOf([]float64{1, 1, 1}, []float64{1, 2, 3}))
	require.NoError(t, c.Rename(0, "Lap 1"))
	assert.False(t, l.Equal(c))
	assert.Equal(t, "First Lap", l.Splits[0].Name)
	assert.Equal(t, 31*time.Second, *c.Splits[0].Best)
	assert.Error(t, c.Rename(9, "x"))
}

func TestRunPopAndLast(t *testing.T) {
	r := &Run{}
	_, ok := r.Pop()
	assert.False(t, ok)
	assert.Nil(t, r.Last())

	r.Append(Seconds(1), Seconds(1))
	r.Append(nil, nil)
	assert.Equal(t, time.Second, *r.Last())

	rec, ok := r.Pop()
	require.True(t, ok)
	assert.True(t, rec.Skipped())
	assert.Equal(t, 1, r.Len())
}
