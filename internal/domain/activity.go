package domain

import (
	"strings"
	"time"
)

// CategoryOther is assigned to apps that match no category rule.
const CategoryOther = "other"

// Activity is the normalized representation of one interval of computer
// usage. Window activities carry App and Category, browser activities
// carry Domain, editor activities carry Language and Project. Activities
// not covered by a not-afk interval have Active=false and are excluded
// from all active-time totals.
type Activity struct {
	Kind     EventKind
	Start    time.Time
	Duration time.Duration
	App      string
	Category string
	Domain   string
	Language string
	Project  string
	Active   bool
}

// End returns the instant the activity stopped.
func (a Activity) End() time.Time {
	return a.Start.Add(a.Duration)
}

// CategoryRule maps a category name to app-name match patterns.
// Rules are evaluated in slice order; the first rule with a matching
// pattern wins, so rule order is priority.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Categorize returns the first rule whose pattern is a case-insensitive
// substring of app, or CategoryOther when nothing matches.
func Categorize(app string, rules []CategoryRule) string {
	lower := strings.ToLower(app)
	for _, rule := range rules {
		for _, pattern := range rule.Patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return rule.Name
			}
		}
	}
	return CategoryOther
}
