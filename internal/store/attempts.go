package store

import (
	"database/sql"
	"fmt"
	"time"
)

// tsLayout has a fixed width so timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000Z07:00"

func nullMs(d *time.Duration) sql.NullInt64 {
	if d == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: true}
}

func fromMs(v sql.NullInt64) *time.Duration {
	if !v.Valid {
		return nil
	}
	d := time.Duration(v.Int64) * time.Millisecond
	return &d
}

// RecordAttempt stores a and its splits, and sets a.ID.
func (s *Store) RecordAttempt(a *Attempt) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(
		`INSERT INTO attempts (ledger, started_at, ended_at, completed, final_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Ledger,
		a.StartedAt.UTC().Format(tsLayout),
		a.EndedAt.UTC().Format(tsLayout),
		a.Completed,
		nullMs(a.Final),
		now,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	id, _ := res.LastInsertId()

	for i, sp := range a.Splits {
		_, err := tx.Exec(
			`INSERT INTO attempt_splits (attempt_id, idx, name, segment_ms, cumulative_ms) VALUES (?, ?, ?, ?, ?)`,
			id, i, sp.Name, nullMs(sp.Segment), nullMs(sp.Cumulative),
		)
		if err != nil {
			return fmt.Errorf("record attempt split %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	a.ID = id
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*Attempt, error) {
	a := &Attempt{}
	var startedAt, endedAt, createdAt string
	var final sql.NullInt64
	if err := row.Scan(&a.ID, &a.Ledger, &startedAt, &endedAt, &a.Completed, &final, &createdAt); err != nil {
		return nil, err
	}
	a.StartedAt, _ = time.Parse(tsLayout, startedAt)
	a.EndedAt, _ = time.Parse(tsLayout, endedAt)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.Final = fromMs(final)
	return a, nil
}

const attemptColumns = `id, ledger, started_at, ended_at, completed, final_ms, created_at`

// GetAttempt returns the attempt with its splits.
func (s *Store) GetAttempt(id int64) (*Attempt, error) {
	a, err := scanAttempt(s.db.QueryRow(`SELECT `+attemptColumns+` FROM attempts WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get attempt %d: %w", id, err)
	}
	a.Splits, err = s.attemptSplits(id)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) attemptSplits(id int64) ([]AttemptSplit, error) {
	rows, err := s.db.Query(
		`SELECT idx, name, segment_ms, cumulative_ms FROM attempt_splits WHERE attempt_id = ? ORDER BY idx`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("attempt splits %d: %w", id, err)
	}
	defer rows.Close()

	var out []AttemptSplit
	for rows.Next() {
		var sp AttemptSplit
		var seg, cum sql.NullInt64
		if err := rows.Scan(&sp.Index, &sp.Name, &seg, &cum); err != nil {
			return nil, err
		}
		sp.Segment = fromMs(seg)
		sp.Cumulative = fromMs(cum)
		out = append(out, sp)
	}
	return out, rows.Err()
}

// ListAttempts returns matching attempts, newest first, with their splits.
func (s *Store) ListAttempts(f AttemptFilter) ([]Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE 1=1`
	var args []any

	if f.Ledger != "" {
		query += ` AND ledger = ?`
		args = append(args, f.Ledger)
	}
	if f.CompletedOnly {
		query += ` AND completed = 1`
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(tsLayout))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, f.To.UTC().Format(tsLayout))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	var attempts []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// one connection: splits can only be read once the cursor is closed
	for i := range attempts {
		attempts[i].Splits, err = s.attemptSplits(attempts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return attempts, nil
}

// GetLedgerStats summarises the attempts of a ledger.
func (s *Store) GetLedgerStats(ledger string) (*LedgerStats, error) {
	st := &LedgerStats{Ledger: ledger}
	var best, avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(completed), 0),
		       MIN(CASE WHEN completed = 1 THEN final_ms END),
		       AVG(CASE WHEN completed = 1 THEN final_ms END)
		FROM attempts
		WHERE ledger = ?`, ledger,
	).Scan(&st.Attempts, &st.Completed, &best, &avg)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	if best.Valid {
		d := time.Duration(best.Float64) * time.Millisecond
		st.Best = &d
	}
	if avg.Valid {
		d := time.Duration(avg.Float64 * float64(time.Millisecond))
		st.Average = &d
	}
	return st, nil
}

// DeleteAttempt removes an attempt and its splits.
func (s *Store) DeleteAttempt(id int64) error {
	res, err := s.db.Exec(`DELETE FROM attempts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete attempt %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete attempt %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
