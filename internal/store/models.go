package store

import "time"

// Attempt is one recorded run of a ledger, complete or abandoned.
type Attempt struct {
	ID        int64
	Ledger    string // path of the splits file
	StartedAt time.Time
	EndedAt   time.Time
	Completed bool
	Final     *time.Duration // final time, completed attempts only
	Splits    []AttemptSplit
	CreatedAt time.Time
}

// AttemptSplit is one split of an attempt. Skipped splits have no times.
type AttemptSplit struct {
	Index      int
	Name       string
	Segment    *time.Duration
	Cumulative *time.Duration
}

type Setting struct {
	Key   string
	Value string
}

// AttemptFilter is used to filter attempts in queries.
type AttemptFilter struct {
	Ledger        string
	CompletedOnly bool
	From          *time.Time
	To            *time.Time
	Limit         int
}

// LedgerStats aggregates the attempts of one ledger.
type LedgerStats struct {
	Ledger    string
	Attempts  int
	Completed int
	Best      *time.Duration
	Average   *time.Duration
}
