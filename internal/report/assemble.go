// Package report assembles aggregated statistics, comparison deltas and
// an optional narrative into a Markdown document, persists it, and
// renders a console summary.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

// Document is an assembled report ready for persistence or dispatch.
type Document struct {
	Title    string
	Markdown string
	Period   domain.Period
}

// Input carries everything the assembler consumes. Comparison and
// Narrative are optional; Warning distinguishes "measured zero usage"
// from "measurement failed" when the daemon was unreachable.
type Input struct {
	Aggregation *domain.AggregationResult
	Comparison  *domain.ComparisonResult
	Narrative   string
	Warning     string
	Diagnostics string
	GeneratedAt time.Time
}

// Assemble renders the Markdown document. Identical inputs produce
// byte-identical output: all rankings are ordered descending by
// duration with name as tie-breaker.
func Assemble(in Input) *Document {
	agg := in.Aggregation
	var b strings.Builder

	fmt.Fprintf(&b, "# Personal Efficiency Report\n")
	fmt.Fprintf(&b, "> %s | %s\n", agg.Period.Label(), agg.Period)
	fmt.Fprintf(&b, "> Generated: %s\n\n", in.GeneratedAt.Format("2006-01-02 15:04"))

	if in.Warning != "" {
		fmt.Fprintf(&b, "> **Warning**: %s\n\n", in.Warning)
	}

	b.WriteString("---\n\n## Summary\n\n")
	fmt.Fprintf(&b, "- Total recorded time: %s\n", FormatDuration(agg.TotalDuration))
	fmt.Fprintf(&b, "- Active (non-AFK) time: %s\n", FormatDuration(agg.ActiveDuration))
	fmt.Fprintf(&b, "- Activity rate: %.1f%%\n", agg.ActivityRate())
	fmt.Fprintf(&b, "- App switches: %d\n\n", agg.TotalSwitches)

	writeTable(&b, "## Top applications", agg.ByApp, 10)
	writeTable(&b, "## By category", agg.ByCategory, 0)
	writeTable(&b, "## Top websites", agg.ByDomain, 10)
	writeTable(&b, "## Coding by language", agg.ByLanguage, 5)
	writeTable(&b, "## Coding by project", agg.ByProject, 5)

	writeHourly(&b, agg)

	if in.Comparison != nil {
		writeComparison(&b, in.Comparison)
	}

	if in.Narrative != "" {
		b.WriteString("---\n\n## Analysis\n\n")
		b.WriteString(strings.TrimSpace(in.Narrative))
		b.WriteString("\n\n")
	}

	if in.Diagnostics != "" {
		fmt.Fprintf(&b, "---\n\n_%s_\n", in.Diagnostics)
	}

	return &Document{
		Title:    fmt.Sprintf("Efficiency Report %s", agg.Period),
		Markdown: b.String(),
		Period:   agg.Period,
	}
}

func writeTable(b *strings.Builder, heading string, values map[string]time.Duration, limit int) {
	entries := TopN(values, limit)
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n\n", heading)
	b.WriteString("| Name | Time |\n|------|------|\n")
	for _, e := range entries {
		fmt.Fprintf(b, "| %s | %s |\n", e.Name, FormatDuration(e.Duration))
	}
	b.WriteString("\n")
}

// writeHourly renders the hourly distribution as a bar chart, one
// character per 30 minutes, skipping leading and trailing empty hours.
func writeHourly(b *strings.Builder, agg *domain.AggregationResult) {
	first, last := -1, -1
	for hour, dur := range agg.Hourly {
		if dur > 0 {
			if first < 0 {
				first = hour
			}
			last = hour
		}
	}
	if first < 0 {
		return
	}

	b.WriteString("## Hourly distribution\n\n```\n")
	for hour := first; hour <= last; hour++ {
		bars := int(agg.Hourly[hour] / (30 * time.Minute))
		fmt.Fprintf(b, "%02d:00 %-12s %s\n", hour, strings.Repeat("█", bars), FormatDuration(agg.Hourly[hour]))
	}
	b.WriteString("```\n\n")
}

func writeComparison(b *strings.Builder, cmp *domain.ComparisonResult) {
	fmt.Fprintf(b, "## Versus previous period (%s)\n\n", cmp.Previous.Period)
	b.WriteString("| Metric | Current | Previous | Change |\n|--------|---------|----------|--------|\n")

	rows := []struct{ key, label string }{
		{"total_duration", "Total time"},
		{"active_duration", "Active time"},
		{"activity_rate", "Activity rate"},
		{"total_switches", "App switches"},
	}
	for _, row := range rows {
		d, ok := cmp.Deltas[row.key]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			row.label, metricValue(row.key, d.Current), metricValue(row.key, d.Previous), changeCell(d))
	}

	var catKeys []string
	for key := range cmp.Deltas {
		if strings.HasPrefix(key, "category:") {
			catKeys = append(catKeys, key)
		}
	}
	// Map iteration order is random; the deltas block must not be.
	sort.Strings(catKeys)
	for _, key := range catKeys {
		d := cmp.Deltas[key]
		if d.Current == 0 && d.Previous == 0 {
			continue
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			strings.TrimPrefix(key, "category:"), FormatSeconds(d.Current), FormatSeconds(d.Previous), changeCell(d))
	}
	b.WriteString("\n")
}

func metricValue(key string, v float64) string {
	switch key {
	case "activity_rate":
		return fmt.Sprintf("%.1f%%", v)
	case "total_switches":
		return fmt.Sprintf("%.0f", v)
	default:
		return FormatSeconds(v)
	}
}

func changeCell(d domain.Delta) string {
	switch d.Direction {
	case domain.DirectionFlat:
		return "flat"
	case domain.DirectionNew:
		return "new"
	case domain.DirectionUp:
		return fmt.Sprintf("▲ %+.1f%%", d.Percent)
	default:
		return fmt.Sprintf("▼ %+.1f%%", d.Percent)
	}
}
