package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/store"
)

// History is the attempt log of one or more ledgers.
type History struct {
	Title    string
	Attempts []store.Attempt // newest first
	Stats    *store.LedgerStats
	Now      time.Time
}

// Render lays out the history for a terminal of the given width: a
// summary, a bar chart of completed final times and one line per attempt.
func (h History) Render(w io.Writer, width int, color bool) string {
	st := newStyles(w, color)
	if h.Now.IsZero() {
		h.Now = time.Now()
	}

	var b strings.Builder
	b.WriteString(st.header.Render(h.Title) + "\n")

	if h.Stats != nil {
		parts := []string{
			fmt.Sprintf("Attempts %d", h.Stats.Attempts),
			fmt.Sprintf("Completed %d", h.Stats.Completed),
		}
		if h.Stats.Best != nil {
			parts = append(parts, "Best "+splits.FormatTime(h.Stats.Best))
		}
		if h.Stats.Average != nil {
			parts = append(parts, "Average "+splits.FormatTime(h.Stats.Average))
		}
		b.WriteString(st.idle.Render(strings.Join(parts, "  ·  ")) + "\n")
	}

	if len(h.Attempts) == 0 {
		b.WriteString(st.pending.Render("  No attempts recorded") + "\n")
		return b.String()
	}

	if chart := h.chart(st, width); chart != "" {
		b.WriteString("\n" + chart + "\n\n")
	}

	for _, a := range h.Attempts {
		b.WriteString(h.line(st, a) + "\n")
	}
	return b.String()
}

func (h History) line(st styles, a store.Attempt) string {
	reached := 0
	for _, sp := range a.Splits {
		if sp.Cumulative != nil || sp.Segment != nil {
			reached++
		}
	}
	result := st.pending.Render(fmt.Sprintf("reset after %d/%d", reached, len(a.Splits)))
	if a.Completed {
		result = st.name.Render(splits.FormatTime(a.Final))
		if h.Stats != nil && h.Stats.Best != nil && a.Final != nil && *a.Final == *h.Stats.Best {
			result = st.gold.Render(splits.FormatTime(a.Final) + " PB")
		}
	}
	return fmt.Sprintf("  %s  %-16s  %s  %s",
		st.pending.Render(fmt.Sprintf("#%-4d", a.ID)),
		humanize.RelTime(a.StartedAt, h.Now, "ago", "from now"),
		formatDuration(a.EndedAt.Sub(a.StartedAt)),
		result,
	)
}

// chart draws the final times of completed attempts, oldest on the left,
// in seconds. It is empty when no attempt was completed.
func (h History) chart(st styles, width int) string {
	var bars []barchart.BarData
	for i := len(h.Attempts) - 1; i >= 0; i-- {
		a := h.Attempts[i]
		if !a.Completed || a.Final == nil {
			continue
		}
		style := st.finished
		if h.Stats != nil && h.Stats.Best != nil && *a.Final == *h.Stats.Best {
			style = st.gold
		}
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("#%d", a.ID),
			Values: []barchart.BarValue{{
				Name:  splits.FormatTime(a.Final),
				Value: a.Final.Seconds(),
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return ""
	}

	chartWidth := width - 4
	if chartWidth < 20 {
		chartWidth = 20
	}
	chart := barchart.New(chartWidth, 10)
	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

// RenderAttempt lists one attempt split by split. Splits without a time
// show a dash.
func RenderAttempt(w io.Writer, a store.Attempt, color bool) string {
	st := newStyles(w, color)

	status := "reset"
	if a.Completed {
		status = "completed in " + splits.FormatTime(a.Final)
	}

	var b strings.Builder
	b.WriteString(st.header.Render(fmt.Sprintf("Attempt #%d", a.ID)) + "\n")
	b.WriteString(st.idle.Render(fmt.Sprintf("%s  %s  %s",
		a.Ledger, a.StartedAt.Local().Format("2006-01-02 15:04"), status)) + "\n\n")

	nameWidth := len("Split")
	for _, sp := range a.Splits {
		nameWidth = max(nameWidth, len(sp.Name))
	}
	cell := func(d *time.Duration) string {
		if d == nil {
			return "-"
		}
		return splits.FormatTime(d)
	}

	b.WriteString(st.pending.Render(fmt.Sprintf("  %-*s  %12s  %12s", nameWidth, "Split", "Segment", "Time")) + "\n")
	for _, sp := range a.Splits {
		line := fmt.Sprintf("  %-*s  %12s  %12s", nameWidth, sp.Name, cell(sp.Segment), cell(sp.Cumulative))
		if sp.Cumulative == nil {
			line = st.pending.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
