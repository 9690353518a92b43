package tui

import (
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/sadopc/termsplit/internal/splits"
)

// Screen draws the splits table with a status line and a message area
// below it, rewriting the region in place. Every write holds mu for its
// whole read-modify-write of the region, so the live redraw and
// administrative output can interleave safely.
type Screen struct {
	mu  sync.Mutex
	out *termenv.Output
	st  styles

	widths  []int
	lines   int // lines of the frame on screen; the cursor sits below them
	nrows   int // table rows in the frame
	liveAt  int // index of the live row in the frame, -1 for none
	message []string
}

func NewScreen(w io.Writer, color bool) *Screen {
	return &Screen{
		out:    termenv.NewOutput(w),
		st:     newStyles(w, color),
		liveAt: -1,
	}
}

// Redraw draws the whole frame, recomputing column widths.
func (s *Screen) Redraw(v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redraw(v)
	return nil
}

func (s *Screen) redraw(v View) {
	rows, live := v.Live()
	s.widths = Widths(rows)
	s.nrows = len(rows)
	s.liveAt = live

	lines := make([]string, 0, len(rows)+2+len(s.message))
	lines = append(lines, s.st.header.Render(FormatRow(Header, s.widths)))
	for _, r := range rows {
		lines = append(lines, s.styleRow(r))
	}
	lines = append(lines, s.status(v))
	lines = append(lines, s.message...)
	s.replaceFrom(0, lines)
}

// DrawLive rewrites only the live row and the status line. It falls back
// to a full redraw when the table changed shape or the live row no longer
// fits the cached widths.
func (s *Screen) DrawLive(v View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, live := v.Live()
	if len(rows) != s.nrows || live != s.liveAt || s.widths == nil || (live >= 0 && !fits(rows[live], s.widths)) {
		s.redraw(v)
		return nil
	}
	if live >= 0 {
		s.rewriteLine(1+live, s.styleRow(rows[live]))
	}
	s.rewriteLine(1+s.nrows, s.status(v))
	return nil
}

// Message replaces the message area below the status line.
func (s *Screen) Message(lines ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = make([]string, len(lines))
	for i, l := range lines {
		s.message[i] = s.st.message.Render(l)
	}
	s.replaceFrom(s.nrows+2, s.message)
	return nil
}

// Error shows err in the message area.
func (s *Screen) Error(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = []string{s.st.err.Render("error: " + err.Error())}
	s.replaceFrom(s.nrows+2, s.message)
	return nil
}

// replaceFrom rewrites the frame from line start onwards and clears any
// leftover lines of a longer previous frame.
func (s *Screen) replaceFrom(start int, lines []string) {
	start = min(start, s.lines)
	if up := s.lines - start; up > 0 {
		s.out.CursorPrevLine(up)
	}
	for _, l := range lines {
		s.out.ClearLine()
		io.WriteString(s.out, l+"\n")
	}
	total := start + len(lines)
	if extra := s.lines - total; extra > 0 {
		for i := 0; i < extra; i++ {
			s.out.ClearLine()
			io.WriteString(s.out, "\n")
		}
		s.out.CursorPrevLine(extra)
	}
	s.lines = total
}

func (s *Screen) rewriteLine(i int, text string) {
	up := s.lines - i
	if up <= 0 {
		return
	}
	s.out.CursorPrevLine(up)
	s.out.ClearLine()
	io.WriteString(s.out, text)
	s.out.CursorNextLine(up)
}

func (s *Screen) styleRow(r Row) string {
	cells := formatCells(r, s.widths)
	base := s.st.name
	switch {
	case r.Live:
		base = s.st.live
	case !r.Reached:
		base = s.st.pending
	}

	for i, c := range cells {
		switch {
		case i == 0 || !r.Reached:
			cells[i] = base.Render(c)
		case i == 1 && r.Gold:
			cells[i] = s.st.gold.Render(c)
		case i == 2 || i == 3 || i == 5:
			cells[i] = s.st.delta(strings.TrimSpace(c)).Render(c)
		default:
			cells[i] = base.Render(c)
		}
	}
	return strings.Join(cells, "  ")
}

func (s *Screen) status(v View) string {
	elapsed := splits.FormatTime(v.Elapsed())
	var line string
	switch v.State {
	case StateRunning:
		line = s.st.running.Render("● RUNNING  " + elapsed)
	case StatePaused:
		line = s.st.paused.Render("⏸  PAUSED  " + elapsed)
	case StateFinished:
		line = s.st.finished.Render("■ FINISHED " + elapsed)
		if newPB(v) {
			line += s.st.gold.Render("  new personal best!")
		}
	default:
		parts := []string{"Ready"}
		if v.Ledger.Len() > 0 {
			if pb := v.Ledger.Splits[v.Ledger.Len()-1].PB; pb != nil {
				parts = append(parts, "PB "+splits.FormatTime(pb))
			}
		}
		if sob := SumOfBest(v.Ledger); sob != nil {
			parts = append(parts, "Sum of best "+splits.FormatTime(sob))
		}
		line = s.st.idle.Render(strings.Join(parts, "  ·  "))
	}
	if v.Dirty {
		line += s.st.pending.Render("  [unsaved]")
	}
	return line
}

// newPB reports whether a finished run beats the ledger's PB.
func newPB(v View) bool {
	final := v.Run.Last()
	if final == nil || v.Run.Len() < v.Ledger.Len() || v.Ledger.Len() == 0 {
		return false
	}
	pb := v.Ledger.Splits[v.Ledger.Len()-1].PB
	return pb == nil || *final < *pb
}
