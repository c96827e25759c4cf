// Package compare computes period-over-period deltas between two
// aggregation results. Which period counts as "previous" is the
// caller's policy (domain.Period.Previous); the comparator only
// measures the difference.
package compare

import (
	"sort"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

// epsilon is the dead zone below which a change counts as flat, so
// sub-second clipping noise never reads as a trend.
const epsilon = 1.0

// Compare computes deltas for every scalar metric present in either
// result. Categories missing on one side are treated as zero.
func Compare(current, previous *domain.AggregationResult) *domain.ComparisonResult {
	deltas := map[string]domain.Delta{
		"total_duration":  delta(seconds(current.TotalDuration), seconds(previous.TotalDuration)),
		"active_duration": delta(seconds(current.ActiveDuration), seconds(previous.ActiveDuration)),
		"activity_rate":   delta(current.ActivityRate(), previous.ActivityRate()),
		"total_switches":  delta(float64(current.TotalSwitches), float64(previous.TotalSwitches)),
	}

	for _, cat := range categoryUnion(current, previous) {
		deltas["category:"+cat] = delta(seconds(current.ByCategory[cat]), seconds(previous.ByCategory[cat]))
	}

	return &domain.ComparisonResult{
		Current:  current,
		Previous: previous,
		Deltas:   deltas,
	}
}

// delta classifies the change from prev to cur. A metric appearing out
// of nowhere (prev == 0, cur > 0) gets the "new" sentinel instead of an
// infinite percentage.
func delta(cur, prev float64) domain.Delta {
	d := domain.Delta{
		Current:  cur,
		Previous: prev,
		Absolute: cur - prev,
	}

	switch {
	case prev == 0 && d.Absolute > epsilon:
		d.Direction = domain.DirectionNew
		return d
	case prev != 0:
		d.Percent = d.Absolute / prev * 100
	}

	switch {
	case d.Absolute > epsilon:
		d.Direction = domain.DirectionUp
	case d.Absolute < -epsilon:
		d.Direction = domain.DirectionDown
	default:
		d.Direction = domain.DirectionFlat
	}
	return d
}

func categoryUnion(a, b *domain.AggregationResult) []string {
	set := make(map[string]struct{}, len(a.ByCategory)+len(b.ByCategory))
	for cat := range a.ByCategory {
		set[cat] = struct{}{}
	}
	for cat := range b.ByCategory {
		set[cat] = struct{}{}
	}
	cats := make([]string, 0, len(set))
	for cat := range set {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	return cats
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}
