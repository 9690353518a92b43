// Package splits holds the split ledger: the ordered list of named segments
// with the best time seen for each segment and the cumulative times of the
// best complete run.
//
// The on-disk format is meant to be edited by hand. Each line is
//
//	{name}\t{best segment}\t{time at this split in the best run}
//
// Best segment is measured from the start of the segment, whereas the best
// run column is measured from the start of the run. For a three-lap race
// with laps of 31s, 30s and 32s on a first attempt the file reads:
//
//	First Lap	00:31.000	00:31.000
//	Second Lap	00:30.000	01:01.000
//	Third Lap	00:32.000	01:33.000
package splits

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Split is one named segment. Nil times are absent.
type Split struct {
	Name string
	Best *time.Duration // best time for this segment alone, across all runs
	PB   *time.Duration // elapsed time at this split in the best complete run
}

// Ledger is the ordered list of splits for one activity.
type Ledger struct {
	Splits []Split
}

// New creates a ledger with the given split names and no times.
func New(names ...string) *Ledger {
	l := &Ledger{}
	for _, n := range names {
		l.Append(n, nil, nil)
	}
	return l
}

func (l *Ledger) Len() int { return len(l.Splits) }

func (l *Ledger) Append(name string, best, pb *time.Duration) {
	l.Splits = append(l.Splits, Split{Name: name, Best: roundMs(best), PB: roundMs(pb)})
}

// Rename changes the name of split i.
func (l *Ledger) Rename(i int, name string) error {
	if i < 0 || i >= len(l.Splits) {
		return fmt.Errorf("rename split: index %d out of range", i)
	}
	l.Splits[i].Name = name
	return nil
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{Splits: make([]Split, len(l.Splits))}
	for i, s := range l.Splits {
		c.Splits[i] = Split{Name: s.Name, Best: roundMs(s.Best), PB: roundMs(s.PB)}
	}
	return c
}

// Equal compares names and times, not textual formatting.
func (l *Ledger) Equal(o *Ledger) bool {
	if l == nil || o == nil {
		return l == o
	}
	if len(l.Splits) != len(o.Splits) {
		return false
	}
	for i, s := range l.Splits {
		t := o.Splits[i]
		if s.Name != t.Name || !equalTime(s.Best, t.Best) || !equalTime(s.PB, t.PB) {
			return false
		}
	}
	return true
}

// Parse reads a ledger from its text form. Blank lines are skipped, columns
// past the third are ignored and missing columns are absent times.
func Parse(data string) (*Ledger, error) {
	l := &Ledger{}
	for i, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) > 3 {
			parts = parts[:3]
		}
		for len(parts) < 3 {
			parts = append(parts, "")
		}

		best, err := ParseTime(parts[1])
		if err != nil {
			return nil, withLine(err, i+1)
		}
		pb, err := ParseTime(parts[2])
		if err != nil {
			return nil, withLine(err, i+1)
		}
		l.Splits = append(l.Splits, Split{Name: strings.TrimSpace(parts[0]), Best: best, PB: pb})
	}
	return l, nil
}

func withLine(err error, line int) error {
	if fe, ok := err.(*FormatError); ok {
		fe.Line = line
	}
	return err
}

// Load reads a ledger from r.
func Load(r io.Reader) (*Ledger, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read splits: %w", err)
	}
	return Parse(string(data))
}

// Dump renders the ledger in its file form, with a trailing newline.
func (l *Ledger) Dump() string {
	var b strings.Builder
	for _, s := range l.Splits {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", s.Name, FormatTime(s.Best), FormatTime(s.PB))
	}
	return b.String()
}

// LoadFile reads the ledger stored at path.
func LoadFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open splits: %w", err)
	}
	defer f.Close()

	l, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// SaveFile writes the ledger to path, replacing it atomically.
func (l *Ledger) SaveFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save splits: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(l.Dump()); err != nil {
		tmp.Close()
		return fmt.Errorf("save splits: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save splits: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save splits: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save splits: %w", err)
	}
	return nil
}

// Merge folds a finished or abandoned run into the ledger and reports
// whether anything changed.
//
// Best segments improve independently per index. The PB column is only
// touched when the run covers every split and beats the PB final time, in
// which case the whole column is replaced by the run's cumulative times.
func (l *Ledger) Merge(run *Run) bool {
	if run == nil {
		return false
	}
	changed := false

	n := min(len(l.Splits), run.Len())
	for i := 0; i < n; i++ {
		seg := roundMs(run.Records[i].Segment)
		if seg == nil {
			continue
		}
		if best := l.Splits[i].Best; best == nil || *seg < *best {
			l.Splits[i].Best = seg
			changed = true
		}
	}

	if len(l.Splits) == 0 || run.Len() < len(l.Splits) {
		return changed
	}

	last := len(l.Splits) - 1
	final := roundMs(run.Records[last].Cumulative)
	if final == nil {
		return changed
	}
	if pb := l.Splits[last].PB; pb != nil && *final >= *pb {
		return changed
	}
	for i := range l.Splits {
		l.Splits[i].PB = roundMs(run.Records[i].Cumulative)
	}
	return true
}
