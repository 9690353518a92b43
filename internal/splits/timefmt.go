package splits

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	errTooManySeparators = errors.New("too many separators")
	errOutOfRange        = errors.New("value out of range")
)

// FormatError reports a time field that could not be parsed.
type FormatError struct {
	Value string
	Line  int // 1-based; zero when not parsing a file
	Err   error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: cannot parse time %q: %v", e.Line, e.Value, e.Err)
	}
	return fmt.Sprintf("cannot parse time %q: %v", e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseTime recognises [[H:]M:]S[.f]. Blanks around each field are
// ignored. An empty or blank string is an absent time and parses to nil.
func ParseTime(s string) (*time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return nil, &FormatError{Value: s, Err: errTooManySeparators}
	}

	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return nil, &FormatError{Value: s, Err: err}
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) {
		return nil, &FormatError{Value: s, Err: errOutOfRange}
	}

	// parts before the seconds are minutes, then hours, reading right to left
	scale := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, &FormatError{Value: s, Err: err}
		}
		secs += float64(n) * scale
		scale *= 60
	}

	ms := math.Round(secs * 1000)
	if math.Abs(ms) > float64(math.MaxInt64/int64(time.Millisecond)) {
		return nil, &FormatError{Value: s, Err: errOutOfRange}
	}
	d := time.Duration(ms) * time.Millisecond
	return &d, nil
}

// FormatTime renders d as [H:]MM:SS.sss. Absent times render empty and
// negative ones fall back to plain seconds.
func FormatTime(d *time.Duration) string {
	if d == nil {
		return ""
	}
	if *d < 0 {
		return fmt.Sprintf("%.3f", d.Seconds())
	}

	ms := int64(d.Round(time.Millisecond) / time.Millisecond)
	hours := ms / 3_600_000
	ms %= 3_600_000
	mins := ms / 60_000
	ms %= 60_000

	ret := fmt.Sprintf("%02d:%02d.%03d", mins, ms/1000, ms%1000)
	if hours > 0 {
		ret = fmt.Sprintf("%d:%s", hours, ret)
	}
	return ret
}

// Dur returns a pointer to d, for building optional times.
func Dur(d time.Duration) *time.Duration {
	return &d
}

// Seconds is Dur for a float number of seconds, rounded to the millisecond.
func Seconds(s float64) *time.Duration {
	return Dur(time.Duration(math.Round(s*1000)) * time.Millisecond)
}

func roundMs(d *time.Duration) *time.Duration {
	if d == nil {
		return nil
	}
	return Dur(d.Round(time.Millisecond))
}

func equalTime(a, b *time.Duration) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
