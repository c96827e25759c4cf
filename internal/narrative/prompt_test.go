package narrative

import (
	"strings"
	"testing"
	"time"

	"github.com/mbellini/effwatch/internal/compare"
	"github.com/mbellini/effwatch/internal/domain"
)

func sampleAggregation() *domain.AggregationResult {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	agg := &domain.AggregationResult{
		Period:         domain.Period{Type: domain.PeriodWeek, Start: start, End: start.AddDate(0, 0, 7)},
		TotalDuration:  8 * time.Hour,
		ActiveDuration: 6 * time.Hour,
		ByApp:          map[string]time.Duration{"VS Code": 4 * time.Hour, "Slack": 2 * time.Hour},
		ByCategory:     map[string]time.Duration{"coding": 4 * time.Hour, "communication": 2 * time.Hour},
		ByDomain:       map[string]time.Duration{"github.com": time.Hour},
		ByLanguage:     map[string]time.Duration{"Go": 3 * time.Hour},
		ByProject:      map[string]time.Duration{"effwatch": 3 * time.Hour},
		TotalSwitches:  42,
	}
	agg.Switches[9] = 20
	agg.Switches[14] = 22
	return agg
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	agg := sampleAggregation()
	cmp := compare.Compare(agg, sampleAggregation())

	a := BuildPrompt(agg, cmp)
	b := BuildPrompt(agg, cmp)
	if a != b {
		t.Error("prompt must be deterministic for identical inputs")
	}
}

func TestBuildPrompt_Content(t *testing.T) {
	prompt := BuildPrompt(sampleAggregation(), nil)

	for _, want := range []string{
		"VS Code: 4.0h",
		"coding: 4.0h",
		"github.com: 1.0h",
		"Go: 3.0h",
		"09:00: 20 switches",
		"App switches: 42",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(prompt, "Versus previous period") {
		t.Error("prompt must omit the trend section without comparison data")
	}
}

func TestBuildPrompt_WithComparison(t *testing.T) {
	agg := sampleAggregation()
	prev := sampleAggregation()
	prev.ActiveDuration = 3 * time.Hour
	prev.Period = prev.Period.Previous()

	prompt := BuildPrompt(agg, compare.Compare(agg, prev))
	if !strings.Contains(prompt, "Versus previous period") {
		t.Error("prompt should include the trend section")
	}
	if !strings.Contains(prompt, "+100.0%") {
		t.Errorf("prompt should include the active-time change, got:\n%s", prompt)
	}
}
