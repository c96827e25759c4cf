package domain

import "time"

// AggregationResult holds all per-period usage totals. Window events
// define the canonical timeline: TotalDuration, ActiveDuration, ByApp,
// ByCategory, Hourly and Switches are computed from window activities,
// while ByDomain comes from browser activities and ByLanguage/ByProject
// from editor activities.
//
// Invariants: ActiveDuration <= TotalDuration, and the ByCategory values
// sum exactly to ActiveDuration (every active window activity falls in
// exactly one category, CategoryOther included).
type AggregationResult struct {
	Period         Period                   `json:"period"`
	TotalDuration  time.Duration            `json:"total_duration"`
	ActiveDuration time.Duration            `json:"active_duration"`
	ByApp          map[string]time.Duration `json:"by_app"`
	ByCategory     map[string]time.Duration `json:"by_category"`
	ByDomain       map[string]time.Duration `json:"by_domain"`
	ByLanguage     map[string]time.Duration `json:"by_language"`
	ByProject      map[string]time.Duration `json:"by_project"`
	Hourly         [24]time.Duration        `json:"hourly"`
	Switches       [24]int                  `json:"switches"`
	TotalSwitches  int                      `json:"total_switches"`
	EventCounts    map[string]int           `json:"event_counts"`
}

// ActivityRate returns active time as a percentage of total time.
func (r *AggregationResult) ActivityRate() float64 {
	if r.TotalDuration <= 0 {
		return 0
	}
	return float64(r.ActiveDuration) / float64(r.TotalDuration) * 100
}

// Direction classifies the sign of a metric delta.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
	// DirectionNew marks a metric that had no previous value: the
	// percentage change is undefined rather than infinite.
	DirectionNew Direction = "new"
)

// Delta is the change of one scalar metric between two periods.
// Duration metrics are expressed in seconds.
type Delta struct {
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
	Absolute  float64   `json:"absolute"`
	Percent   float64   `json:"percent"`
	Direction Direction `json:"direction"`
}

// ComparisonResult pairs two aggregation results with per-metric deltas.
// Delta keys are "total_duration", "active_duration", "activity_rate",
// "total_switches" and "category:<name>" for every category present in
// either period.
type ComparisonResult struct {
	Current  *AggregationResult `json:"current"`
	Previous *AggregationResult `json:"previous"`
	Deltas   map[string]Delta   `json:"deltas"`
}
