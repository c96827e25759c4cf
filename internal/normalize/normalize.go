// Package normalize converts heterogeneous raw watcher events into the
// common Activity representation. AFK events only mark other activities
// as active or idle; they produce no activities of their own.
package normalize

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/mbellini/effwatch/internal/domain"
)

// Diagnostics counts records the normalizer dropped or could not fully
// interpret. Drops never fail the run.
type Diagnostics struct {
	Dropped       int
	MalformedURLs int
}

type interval struct {
	start time.Time
	end   time.Time
}

// Normalize turns raw events into activities. Events with negative
// duration are dropped and counted. Input order does not matter.
//
// An activity is active when its time range intersects a not-afk
// interval. Without any AFK events at all there is nothing to judge
// idleness by, so every activity counts as active; with AFK data
// present, time outside every not-afk interval is assumed idle.
func Normalize(raw []domain.RawEvent, rules []domain.CategoryRule) ([]domain.Activity, Diagnostics) {
	var diag Diagnostics

	active := notAFKIntervals(raw)
	hasAFKData := false
	for _, ev := range raw {
		if ev.Kind == domain.KindAFK {
			hasAFKData = true
			break
		}
	}

	var activities []domain.Activity
	for _, ev := range raw {
		if ev.Kind == domain.KindAFK {
			continue
		}
		if ev.Duration < 0 {
			diag.Dropped++
			continue
		}

		act := domain.Activity{
			Kind:     ev.Kind,
			Start:    ev.Timestamp,
			Duration: ev.Duration,
			Active:   !hasAFKData || overlapsAny(active, ev.Timestamp, ev.End()),
		}

		switch ev.Kind {
		case domain.KindWindow:
			act.App = ev.Payload["app"]
			if act.App == "" {
				act.App = "Unknown"
			}
			act.Category = domain.Categorize(act.App, rules)
		case domain.KindBrowser:
			domainName, ok := registrableDomain(ev.Payload["url"])
			if !ok {
				diag.MalformedURLs++
			}
			act.Domain = domainName
		case domain.KindEditor:
			act.Language = payloadOr(ev.Payload, "language", "unknown")
			act.Project = projectName(payloadOr(ev.Payload, "project", "unknown"))
		}

		activities = append(activities, act)
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Start.Before(activities[j].Start)
	})
	return activities, diag
}

// notAFKIntervals extracts sorted, merged not-afk intervals so that
// overlap checks are a binary search instead of a pairwise scan.
func notAFKIntervals(raw []domain.RawEvent) []interval {
	var out []interval
	for _, ev := range raw {
		if ev.Kind != domain.KindAFK || ev.Payload["status"] != "not-afk" || ev.Duration <= 0 {
			continue
		}
		out = append(out, interval{start: ev.Timestamp, end: ev.End()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })

	merged := out[:0]
	for _, iv := range out {
		if n := len(merged); n > 0 && !iv.start.After(merged[n-1].end) {
			if iv.end.After(merged[n-1].end) {
				merged[n-1].end = iv.end
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

func overlapsAny(intervals []interval, start, end time.Time) bool {
	// First interval ending after the activity starts is the only
	// candidate that can overlap.
	i := sort.Search(len(intervals), func(i int) bool {
		return intervals[i].end.After(start)
	})
	return i < len(intervals) && intervals[i].start.Before(end)
}

// registrableDomain parses a URL down to its eTLD+1. Malformed URLs
// yield ("", false); the activity is still counted, just without a
// domain attribution.
func registrableDomain(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Bare hosts like "localhost" have no public suffix; keep
		// the hostname itself rather than dropping the attribution.
		return host, true
	}
	return etld1, true
}

func payloadOr(payload map[string]string, key, fallback string) string {
	if v := payload[key]; v != "" {
		return v
	}
	return fallback
}

// projectName reduces a project path to its last path element.
func projectName(project string) string {
	project = strings.TrimRight(project, "/")
	if i := strings.LastIndex(project, "/"); i >= 0 {
		return project[i+1:]
	}
	return project
}
