package report

import (
	"fmt"
	"sort"
	"time"
)

// Entry is one row of a duration ranking.
type Entry struct {
	Name     string
	Duration time.Duration
}

// TopN returns the n largest entries of a duration map, descending by
// duration with ties broken by name ascending, so renderings are stable
// across runs. n <= 0 returns all entries.
func TopN(values map[string]time.Duration, n int) []Entry {
	entries := make([]Entry, 0, len(values))
	for name, dur := range values {
		entries = append(entries, Entry{Name: name, Duration: dur})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Duration != entries[j].Duration {
			return entries[i].Duration > entries[j].Duration
		}
		return entries[i].Name < entries[j].Name
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// FormatDuration renders a duration as hours with one decimal, the way
// usage totals read best: "7.5h".
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}

// FormatSeconds renders a seconds count the same way.
func FormatSeconds(s float64) string {
	return fmt.Sprintf("%.1fh", s/3600)
}
