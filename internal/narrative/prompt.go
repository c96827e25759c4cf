package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
	"github.com/mbellini/effwatch/internal/report"
)

// BuildPrompt renders the analysis prompt from aggregated statistics.
// The comparison may be nil when no previous-period data exists. Output
// is deterministic for identical inputs.
func BuildPrompt(agg *domain.AggregationResult, cmp *domain.ComparisonResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Computer-usage data for my %s (%s):\n\n", strings.ToLower(agg.Period.Label()), agg.Period)

	fmt.Fprintf(&b, "## Overview\n")
	fmt.Fprintf(&b, "- Total recorded time: %s\n", report.FormatDuration(agg.TotalDuration))
	fmt.Fprintf(&b, "- Active (non-AFK) time: %s\n", report.FormatDuration(agg.ActiveDuration))
	fmt.Fprintf(&b, "- Activity rate: %.1f%%\n", agg.ActivityRate())
	fmt.Fprintf(&b, "- App switches: %d\n\n", agg.TotalSwitches)

	writeRanking(&b, "## Top applications", agg.ByApp, 10)
	writeRanking(&b, "## By category", agg.ByCategory, 0)
	writeRanking(&b, "## Top websites", agg.ByDomain, 10)
	writeRanking(&b, "## Coding by language", agg.ByLanguage, 5)
	writeRanking(&b, "## Coding by project", agg.ByProject, 3)

	fmt.Fprintf(&b, "## Hourly switch frequency\n")
	fmt.Fprintf(&b, "(app switches per hour; high values suggest fragmented attention)\n")
	for hour, count := range agg.Switches {
		if count > 0 {
			fmt.Fprintf(&b, "- %02d:00: %d switches\n", hour, count)
		}
	}
	b.WriteString("\n")

	if cmp != nil {
		b.WriteString(formatComparison(cmp))
		b.WriteString("\n")
	}

	b.WriteString(`---

Analyze the data above and surface behavior patterns and efficiency insights.

## Focus points

1. **Interruption patterns**: does any app or site keep breaking the flow?
2. **Low-efficiency hours**: which hours have the most switching?
3. **Focus hours**: where did sustained attention happen?
4. **Trends**: any clear progress or regression versus the previous period?
5. **Anything interesting**: patterns, regularities, anomalies.

## Output format

### Overview
(1-2 sentences on the period as a whole)

### Time allocation
(where the time went; the top 2-3 apps or categories)

### Findings
(concrete patterns from the data, bulleted, tied to hours or apps)

### Trends
(versus previous period; skip the section if no comparison data)

### Recommendations
(1-2 specific, actionable suggestions targeting the findings)

Base everything on the data; do not invent information that is not there.
`)

	return b.String()
}

func writeRanking(b *strings.Builder, heading string, values map[string]time.Duration, limit int) {
	entries := report.TopN(values, limit)
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", heading)
	for _, e := range entries {
		fmt.Fprintf(b, "- %s: %s\n", e.Name, report.FormatDuration(e.Duration))
	}
	b.WriteString("\n")
}

func formatComparison(cmp *domain.ComparisonResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Versus previous period (%s)\n", cmp.Previous.Period)
	for _, key := range []string{"active_duration", "total_duration", "activity_rate", "total_switches"} {
		d, ok := cmp.Deltas[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", key, formatDelta(key, d))
	}
	return b.String()
}

func formatDelta(key string, d domain.Delta) string {
	cur, prev := formatMetric(key, d.Current), formatMetric(key, d.Previous)
	switch d.Direction {
	case domain.DirectionFlat:
		return fmt.Sprintf("%s vs %s (flat)", cur, prev)
	case domain.DirectionNew:
		return fmt.Sprintf("%s vs %s (new)", cur, prev)
	default:
		return fmt.Sprintf("%s vs %s (%+.1f%%)", cur, prev, d.Percent)
	}
}

func formatMetric(key string, v float64) string {
	switch key {
	case "activity_rate":
		return fmt.Sprintf("%.1f%%", v)
	case "total_switches":
		return fmt.Sprintf("%.0f", v)
	default:
		return report.FormatSeconds(v)
	}
}
