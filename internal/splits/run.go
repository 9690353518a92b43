package splits

import "time"

// Record is one split of an attempt. A skipped split has neither time.
type Record struct {
	Segment    *time.Duration
	Cumulative *time.Duration
}

// Skipped reports whether the record is a skip placeholder.
func (r Record) Skipped() bool {
	return r.Segment == nil && r.Cumulative == nil
}

// Run holds the splits recorded so far in the current attempt.
type Run struct {
	Records []Record
}

func (r *Run) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

func (r *Run) Append(segment, cumulative *time.Duration) {
	r.Records = append(r.Records, Record{Segment: segment, Cumulative: cumulative})
}

// Pop removes and returns the last record.
func (r *Run) Pop() (Record, bool) {
	if r.Len() == 0 {
		return Record{}, false
	}
	last := r.Records[len(r.Records)-1]
	r.Records = r.Records[:len(r.Records)-1]
	return last, true
}

// Last returns the latest recorded cumulative time, ignoring skips.
func (r *Run) Last() *time.Duration {
	for i := r.Len() - 1; i >= 0; i-- {
		if c := r.Records[i].Cumulative; c != nil {
			return c
		}
	}
	return nil
}

func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}
	c := &Run{Records: make([]Record, len(r.Records))}
	copy(c.Records, r.Records)
	return c
}
