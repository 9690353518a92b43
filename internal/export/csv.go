package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/store"
)

// ToCSV writes one row per split of every attempt.
func ToCSV(attempts []store.Attempt, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Attempt", "Ledger", "Start", "Completed", "Split", "Name", "Segment (ms)", "Segment", "Time"}); err != nil {
		return err
	}

	for _, a := range attempts {
		for _, sp := range a.Splits {
			row := []string{
				fmt.Sprintf("%d", a.ID),
				a.Ledger,
				a.StartedAt.Local().Format(time.RFC3339),
				fmt.Sprintf("%t", a.Completed),
				fmt.Sprintf("%d", sp.Index+1),
				sp.Name,
				millis(sp.Segment),
				splits.FormatTime(sp.Segment),
				splits.FormatTime(sp.Cumulative),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func millis(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%d", d.Milliseconds())
}
