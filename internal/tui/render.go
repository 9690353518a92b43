package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/timing"
)

// Row is one rendered split. Cells are plain text; styling is applied by
// the Screen.
type Row struct {
	Name           string
	Segment        string
	BestDelta      string
	PBSegmentDelta string
	Time           string
	PBDelta        string

	Reached bool // recorded (or skipped) in this run
	Skipped bool
	Gold    bool // faster than the best segment
	Live    bool // the split in progress
}

// Header labels the columns.
var Header = Row{
	Name:           "Name",
	Segment:        "Segment",
	BestDelta:      "+/- Best",
	PBSegmentDelta: "+/- PB Seg",
	Time:           "Time",
	PBDelta:        "+/- PB",
}

const numColumns = 6

func (r Row) Cells() []string {
	return []string{r.Name, r.Segment, r.BestDelta, r.PBSegmentDelta, r.Time, r.PBDelta}
}

// Delta compares actual against reference. A missing actual renders "-", a
// missing reference renders the actual in parentheses.
func Delta(reference, actual *time.Duration) string {
	if actual == nil {
		return "-"
	}
	if reference == nil {
		return "(" + splits.FormatTime(actual) + ")"
	}
	d := *actual - *reference
	if d < 0 {
		d = -d
		return "-" + splits.FormatTime(&d)
	}
	return "+" + splits.FormatTime(&d)
}

// pbSegment derives the time split i took in the PB run.
func pbSegment(l *splits.Ledger, i int) *time.Duration {
	cur := l.Splits[i].PB
	if cur == nil {
		return nil
	}
	if i == 0 {
		return cur
	}
	prev := l.Splits[i-1].PB
	if prev == nil {
		return nil
	}
	return splits.Dur(*cur - *prev)
}

// Rows renders one row per ledger split. Splits the run has reached show
// this run's times and deltas; the rest show the ledger's best segment and
// PB time for reference.
func Rows(l *splits.Ledger, run *splits.Run) []Row {
	rows := make([]Row, l.Len())
	for i, s := range l.Splits {
		row := Row{Name: s.Name}
		if i >= run.Len() {
			row.Segment = splits.FormatTime(s.Best)
			row.Time = splits.FormatTime(s.PB)
			rows[i] = row
			continue
		}

		rec := run.Records[i]
		row.Reached = true
		row.Skipped = rec.Skipped()
		row.Segment = splits.FormatTime(rec.Segment)
		row.Time = splits.FormatTime(rec.Cumulative)
		row.BestDelta = Delta(s.Best, rec.Segment)
		row.PBSegmentDelta = Delta(pbSegment(l, i), rec.Segment)
		row.PBDelta = Delta(s.PB, rec.Cumulative)
		row.Gold = rec.Segment != nil && s.Best != nil && *rec.Segment < *s.Best
		rows[i] = row
	}
	return rows
}

// Widths returns the width of each column: the widest of the header and
// every row.
func Widths(rows []Row) []int {
	widths := make([]int, numColumns)
	for _, r := range append([]Row{Header}, rows...) {
		for i, c := range r.Cells() {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	return widths
}

// fits reports whether every cell of r fits the given widths.
func fits(r Row, widths []int) bool {
	for i, c := range r.Cells() {
		if lipgloss.Width(c) > widths[i] {
			return false
		}
	}
	return true
}

func pad(s string, w int) string {
	if n := w - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// formatCells pads each cell of r to its column width. The name is left
// aligned and times are right aligned.
func formatCells(r Row, widths []int) []string {
	cells := r.Cells()
	for i, c := range cells {
		if i == 0 {
			cells[i] = pad(c, widths[i])
			continue
		}
		cells[i] = strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(c))) + c
	}
	return cells
}

// FormatRow lays out r in columns.
func FormatRow(r Row, widths []int) string {
	return strings.Join(formatCells(r, widths), "  ")
}

// SumOfBest adds up every best segment; it is absent when any is missing.
func SumOfBest(l *splits.Ledger) *time.Duration {
	if l.Len() == 0 {
		return nil
	}
	var total time.Duration
	for _, s := range l.Splits {
		if s.Best == nil {
			return nil
		}
		total += *s.Best
	}
	return &total
}

// State is the session lifecycle state as shown on screen.
type State int

const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	}
	return "idle"
}

// View is an immutable snapshot of the session for drawing. Timer is a
// private copy, so reading it never races with the session.
type View struct {
	Ledger *splits.Ledger
	Run    *splits.Run
	Timer  *timing.Timer
	State  State
	Dirty  bool
}

// Live returns the rows including the provisional row for the split in
// progress, and its index (-1 when there is none).
func (v View) Live() ([]Row, int) {
	idx := v.Run.Len()
	if v.Timer == nil || !v.Timer.Started() || (v.State != StateRunning && v.State != StatePaused) || idx >= v.Ledger.Len() {
		return Rows(v.Ledger, v.Run), -1
	}
	seg, err := v.Timer.Mark(true)
	if err != nil {
		return Rows(v.Ledger, v.Run), -1
	}
	// one clock reading for both columns
	total := v.Timer.LastMark() + seg

	live := v.Run.Clone()
	if live == nil {
		live = &splits.Run{}
	}
	segment := splits.Dur(seg)
	if idx > 0 && live.Records[idx-1].Skipped() {
		segment = nil
	}
	live.Append(segment, splits.Dur(total))
	rows := Rows(v.Ledger, live)
	rows[idx].Live = true
	return rows, idx
}

// Elapsed is the total time shown in the status line.
func (v View) Elapsed() *time.Duration {
	switch v.State {
	case StateRunning, StatePaused:
		if v.Timer == nil || !v.Timer.Started() {
			return nil
		}
		d, err := v.Timer.Elapsed()
		if err != nil {
			return nil
		}
		return &d
	case StateFinished:
		return v.Run.Last()
	}
	return nil
}
