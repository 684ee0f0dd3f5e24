// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package publish

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-elect/models"
)

// BarWidth is the number of cells in a rendered bar
const BarWidth = 20

// Render produces the plain-text announcement of a final result
func Render(e models.Election, r models.TallyResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Results: %s\n", e.Name)
	fmt.Fprintf(&b, "Method: %s | Election ID: %s\n", e.Method, e.ID)

	if e.Kind == models.KindProposition {
		parts := make([]string, 0, len(r.Breakdown))
		for _, entry := range r.Breakdown {
			parts = append(parts, fmt.Sprintf("%s: %s", entry.Label, humanize.Ftoa(entry.Count)))
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")

		fmt.Fprintf(&b, "Majority: %s | Minority: %s | Abstain: %d\n",
			labelAt(r.Breakdown, 0), labelAt(r.Breakdown, 1), r.Abstain)
	} else {
		winner := "none"
		if len(r.Winner) > 0 {
			winner = strings.Join(r.Winner, ", ")
		}
		if r.Details != nil && r.Details.Tie {
			winner += " (tie)"
		}
		fmt.Fprintf(&b, "Winner: %s\n", winner)
		fmt.Fprintf(&b, "Total votes: %s\n", humanize.Ftoa(r.TotalVotes))

		if r.Details != nil && len(r.Details.Rounds) > 0 {
			last := r.Details.Rounds[len(r.Details.Rounds)-1]
			parts := make([]string, 0, len(last.Breakdown))
			for _, entry := range last.Breakdown {
				parts = append(parts, fmt.Sprintf("%s: %s", entry.Label, humanize.Ftoa(entry.Count)))
			}
			fmt.Fprintf(&b, "Final round: %s\n", strings.Join(parts, ", "))
		}
	}

	b.WriteString("\n")
	b.WriteString(Bars(e.Options, r.Counts, r.TotalVotes+float64(r.Abstain)))
	return b.String()
}

// Bars draws one fixed-width bar per option, in declaration order.
// Each bar is the option's share of total, rounded to whole cells.
func Bars(options []string, counts map[string]float64, total float64) string {
	width := 4
	for _, o := range options {
		if n := len([]rune(o)); n > width {
			width = n
		}
	}

	lines := make([]string, 0, len(options))
	for _, o := range options {
		count := counts[o]
		share := 0.0
		if total > 0 {
			share = count / total
		}
		cells := int(math.Round(share * BarWidth))
		cells = max(0, min(cells, BarWidth))

		bar := strings.Repeat("█", cells) + strings.Repeat("░", BarWidth-cells)
		pct := fmt.Sprintf("%d%%", int(math.Round(share*100)))
		label := o + strings.Repeat(" ", width-len([]rune(o)))

		lines = append(lines, fmt.Sprintf("%s %s %s (%4s)", label, bar, humanize.Ftoa(count), pct))
	}
	return strings.Join(lines, "\n")
}

func labelAt(entries []models.BreakdownEntry, i int) string {
	if i >= len(entries) {
		return "-"
	}
	return entries[i].Label
}
