package normalize

import (
	"testing"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

var baseTime = time.Date(2024, 1, 7, 9, 0, 0, 0, time.Local)

func windowEvent(app string, start time.Time, dur time.Duration) domain.RawEvent {
	return domain.RawEvent{
		Kind:      domain.KindWindow,
		Timestamp: start,
		Duration:  dur,
		Payload:   map[string]string{"app": app},
	}
}

func afkEvent(status string, start time.Time, dur time.Duration) domain.RawEvent {
	return domain.RawEvent{
		Kind:      domain.KindAFK,
		Timestamp: start,
		Duration:  dur,
		Payload:   map[string]string{"status": status},
	}
}

func TestNormalize_AFKCorrelation(t *testing.T) {
	raw := []domain.RawEvent{
		windowEvent("VS Code", baseTime, time.Hour),
		windowEvent("Slack", baseTime.Add(2*time.Hour), time.Hour),
		afkEvent("not-afk", baseTime, time.Hour),
		afkEvent("afk", baseTime.Add(time.Hour), 2*time.Hour),
	}

	activities, diag := Normalize(raw, nil)
	if diag.Dropped != 0 {
		t.Errorf("expected no drops, got %d", diag.Dropped)
	}
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}

	if !activities[0].Active {
		t.Error("activity overlapping a not-afk interval should be active")
	}
	if activities[1].Active {
		t.Error("activity outside every not-afk interval should be idle")
	}
}

func TestNormalize_NoAFKDataMeansActive(t *testing.T) {
	raw := []domain.RawEvent{windowEvent("VS Code", baseTime, time.Hour)}

	activities, _ := Normalize(raw, nil)
	if len(activities) != 1 || !activities[0].Active {
		t.Error("without AFK data every activity should count as active")
	}
}

func TestNormalize_PartialOverlapIsActive(t *testing.T) {
	raw := []domain.RawEvent{
		// Event 09:30-10:30, not-afk 09:00-10:00: they intersect.
		windowEvent("VS Code", baseTime.Add(30*time.Minute), time.Hour),
		afkEvent("not-afk", baseTime, time.Hour),
	}

	activities, _ := Normalize(raw, nil)
	if !activities[0].Active {
		t.Error("partially overlapping activity should be active")
	}
}

func TestNormalize_UnsortedInput(t *testing.T) {
	raw := []domain.RawEvent{
		windowEvent("B", baseTime.Add(time.Hour), time.Hour),
		windowEvent("A", baseTime, time.Hour),
		afkEvent("not-afk", baseTime.Add(30*time.Minute), time.Minute),
		afkEvent("not-afk", baseTime, time.Hour), // overlaps the one above
	}

	activities, _ := Normalize(raw, nil)
	if len(activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(activities))
	}
	if activities[0].App != "A" || activities[1].App != "B" {
		t.Error("activities should come out sorted by start time")
	}
	if !activities[0].Active {
		t.Error("overlapping not-afk intervals should merge, covering A")
	}
}

func TestNormalize_DropsNegativeDuration(t *testing.T) {
	raw := []domain.RawEvent{
		windowEvent("VS Code", baseTime, -time.Second),
		windowEvent("Slack", baseTime, time.Hour),
	}

	activities, diag := Normalize(raw, nil)
	if diag.Dropped != 1 {
		t.Errorf("expected 1 dropped event, got %d", diag.Dropped)
	}
	if len(activities) != 1 {
		t.Errorf("expected 1 surviving activity, got %d", len(activities))
	}
}

func TestNormalize_CategoryAssignment(t *testing.T) {
	rules := []domain.CategoryRule{{Name: "coding", Patterns: []string{"VS Code"}}}
	raw := []domain.RawEvent{
		windowEvent("VS Code", baseTime, time.Hour),
		windowEvent("Photoshop", baseTime, time.Hour),
	}

	activities, _ := Normalize(raw, rules)
	if activities[0].Category != "coding" {
		t.Errorf("expected coding, got %q", activities[0].Category)
	}
	if activities[1].Category != domain.CategoryOther {
		t.Errorf("expected %q, got %q", domain.CategoryOther, activities[1].Category)
	}
}

func TestNormalize_DomainExtraction(t *testing.T) {
	tests := []struct {
		url        string
		wantDomain string
	}{
		{"https://sub.example.com/path?q=1", "example.com"},
		{"https://www.example.com/", "example.com"},
		{"https://example.co.uk/page", "example.co.uk"},
		{"not-a-url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		raw := []domain.RawEvent{{
			Kind:      domain.KindBrowser,
			Timestamp: baseTime,
			Duration:  time.Minute,
			Payload:   map[string]string{"url": tt.url},
		}}
		activities, _ := Normalize(raw, nil)
		if len(activities) != 1 {
			t.Fatalf("url %q: activity should be kept even without a domain", tt.url)
		}
		if activities[0].Domain != tt.wantDomain {
			t.Errorf("url %q: expected domain %q, got %q", tt.url, tt.wantDomain, activities[0].Domain)
		}
	}
}

func TestNormalize_EditorPayload(t *testing.T) {
	raw := []domain.RawEvent{{
		Kind:      domain.KindEditor,
		Timestamp: baseTime,
		Duration:  time.Minute,
		Payload:   map[string]string{"language": "Go", "project": "/home/me/src/effwatch/"},
	}}

	activities, _ := Normalize(raw, nil)
	if activities[0].Language != "Go" {
		t.Errorf("expected language Go, got %q", activities[0].Language)
	}
	if activities[0].Project != "effwatch" {
		t.Errorf("expected project effwatch, got %q", activities[0].Project)
	}
}
