package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Attempts   []jsonAttempt `json:"attempts"`
}

type jsonAttempt struct {
	ID        int64       `json:"id"`
	Ledger    string      `json:"ledger"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Completed bool        `json:"completed"`
	FinalMs   *int64      `json:"final_ms,omitempty"`
	Final     string      `json:"final,omitempty"`
	Splits    []jsonSplit `json:"splits"`
}

type jsonSplit struct {
	Name         string `json:"name"`
	SegmentMs    *int64 `json:"segment_ms"`
	CumulativeMs *int64 `json:"cumulative_ms"`
	Time         string `json:"time,omitempty"`
}

func msPtr(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	v := d.Milliseconds()
	return &v
}

// ToJSON writes attempts with their splits as one indented document.
// Skipped splits carry null times.
func ToJSON(attempts []store.Attempt, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(attempts),
		Attempts:   []jsonAttempt{},
	}

	for _, a := range attempts {
		ja := jsonAttempt{
			ID:        a.ID,
			Ledger:    a.Ledger,
			StartTime: a.StartedAt.Local().Format(time.RFC3339),
			EndTime:   a.EndedAt.Local().Format(time.RFC3339),
			Completed: a.Completed,
			FinalMs:   msPtr(a.Final),
			Final:     splits.FormatTime(a.Final),
			Splits:    []jsonSplit{},
		}
		for _, sp := range a.Splits {
			ja.Splits = append(ja.Splits, jsonSplit{
				Name:         sp.Name,
				SegmentMs:    msPtr(sp.Segment),
				CumulativeMs: msPtr(sp.Cumulative),
				Time:         splits.FormatTime(sp.Cumulative),
			})
		}
		export.Attempts = append(export.Attempts, ja)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
