package compare

import (
	"testing"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

func result(active, total time.Duration, categories map[string]time.Duration) *domain.AggregationResult {
	if categories == nil {
		categories = map[string]time.Duration{}
	}
	return &domain.AggregationResult{
		ActiveDuration: active,
		TotalDuration:  total,
		ByCategory:     categories,
	}
}

func TestCompare_Directions(t *testing.T) {
	current := result(2*time.Hour, 4*time.Hour, nil)
	previous := result(time.Hour, 4*time.Hour, nil)

	cmp := Compare(current, previous)

	active := cmp.Deltas["active_duration"]
	if active.Direction != domain.DirectionUp {
		t.Errorf("expected up, got %s", active.Direction)
	}
	if active.Absolute != 3600 {
		t.Errorf("expected +3600s, got %v", active.Absolute)
	}
	if active.Percent != 100 {
		t.Errorf("expected +100%%, got %v", active.Percent)
	}

	total := cmp.Deltas["total_duration"]
	if total.Direction != domain.DirectionFlat {
		t.Errorf("expected flat, got %s", total.Direction)
	}
}

func TestCompare_DroppedToZero(t *testing.T) {
	cmp := Compare(result(0, 0, nil), result(120*time.Second, 120*time.Second, nil))

	d := cmp.Deltas["active_duration"]
	if d.Direction != domain.DirectionDown {
		t.Errorf("expected down, got %s", d.Direction)
	}
	if d.Absolute != -120 {
		t.Errorf("expected -120s, got %v", d.Absolute)
	}
}

func TestCompare_NewFromZero(t *testing.T) {
	cmp := Compare(result(120*time.Second, 120*time.Second, nil), result(0, 0, nil))

	d := cmp.Deltas["active_duration"]
	if d.Direction != domain.DirectionNew {
		t.Errorf("expected new sentinel, got %s", d.Direction)
	}
	if d.Absolute != 120 {
		t.Errorf("expected +120s, got %v", d.Absolute)
	}
	if d.Percent != 0 {
		t.Errorf("percent must stay 0 for new metrics, got %v", d.Percent)
	}
}

func TestCompare_SubSecondNoiseIsFlat(t *testing.T) {
	cmp := Compare(
		result(time.Hour+500*time.Millisecond, 2*time.Hour, nil),
		result(time.Hour, 2*time.Hour, nil),
	)

	if d := cmp.Deltas["active_duration"]; d.Direction != domain.DirectionFlat {
		t.Errorf("sub-second change should be flat, got %s", d.Direction)
	}
}

func TestCompare_CategoryUnion(t *testing.T) {
	current := result(time.Hour, time.Hour, map[string]time.Duration{"coding": time.Hour})
	previous := result(time.Hour, time.Hour, map[string]time.Duration{"writing": time.Hour})

	cmp := Compare(current, previous)

	coding, ok := cmp.Deltas["category:coding"]
	if !ok {
		t.Fatal("expected delta for category only present in current")
	}
	if coding.Direction != domain.DirectionNew {
		t.Errorf("expected new, got %s", coding.Direction)
	}

	writing, ok := cmp.Deltas["category:writing"]
	if !ok {
		t.Fatal("expected delta for category only present in previous")
	}
	if writing.Direction != domain.DirectionDown {
		t.Errorf("expected down, got %s", writing.Direction)
	}
	if writing.Percent != -100 {
		t.Errorf("expected -100%%, got %v", writing.Percent)
	}
}
