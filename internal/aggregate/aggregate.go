// Package aggregate turns a normalized activity stream into per-period
// usage totals. Aggregation is a pure function: the same activities and
// period always produce the same result.
package aggregate

import (
	"sort"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

// Aggregate computes usage totals for activities intersecting the
// half-open range [p.Start, p.End). Activities straddling a boundary
// contribute only their in-range portion, exact to the clock.
//
// Window activities define the timeline: they feed TotalDuration,
// ActiveDuration, ByApp, ByCategory, Hourly and Switches. Browser
// activities feed ByDomain, editor activities ByLanguage and ByProject.
// Only active activities reach the per-key totals.
func Aggregate(activities []domain.Activity, p domain.Period) *domain.AggregationResult {
	res := &domain.AggregationResult{
		Period:     p,
		ByApp:      map[string]time.Duration{},
		ByCategory: map[string]time.Duration{},
		ByDomain:   map[string]time.Duration{},
		ByLanguage: map[string]time.Duration{},
		ByProject:  map[string]time.Duration{},
	}

	type focus struct {
		start time.Time
		app   string
	}
	var focuses []focus

	for _, act := range activities {
		start, dur := clip(act, p)
		if dur <= 0 {
			continue
		}

		if act.Kind == domain.KindWindow {
			res.TotalDuration += dur
			if !act.Active {
				continue
			}
			res.ActiveDuration += dur
			res.ByApp[act.App] += dur
			res.ByCategory[act.Category] += dur
			splitByHour(&res.Hourly, start, dur)
			focuses = append(focuses, focus{start: start, app: act.App})
			continue
		}

		if !act.Active {
			continue
		}
		switch act.Kind {
		case domain.KindBrowser:
			if act.Domain != "" {
				res.ByDomain[act.Domain] += dur
			}
		case domain.KindEditor:
			res.ByLanguage[act.Language] += dur
			res.ByProject[act.Project] += dur
		}
	}

	sort.Slice(focuses, func(i, j int) bool { return focuses[i].start.Before(focuses[j].start) })
	for i := 1; i < len(focuses); i++ {
		if focuses[i].app != focuses[i-1].app {
			res.Switches[focuses[i].start.Hour()]++
			res.TotalSwitches++
		}
	}

	return res
}

// clip intersects an activity with the period and returns the in-range
// start and duration.
func clip(act domain.Activity, p domain.Period) (time.Time, time.Duration) {
	start, end := act.Start, act.End()
	if start.Before(p.Start) {
		start = p.Start
	}
	if end.After(p.End) {
		end = p.End
	}
	return start, end.Sub(start)
}

// splitByHour adds the interval into local-time hour-of-day buckets,
// splitting exactly at hour boundaries so no rounding rule is needed.
func splitByHour(hourly *[24]time.Duration, start time.Time, dur time.Duration) {
	cur := start
	end := start.Add(dur)
	for cur.Before(end) {
		next := time.Date(cur.Year(), cur.Month(), cur.Day(), cur.Hour(), 0, 0, 0, cur.Location()).Add(time.Hour)
		if next.After(end) {
			next = end
		}
		hourly[cur.Hour()] += next.Sub(cur)
		cur = next
	}
}
