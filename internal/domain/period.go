package domain

import (
	"fmt"
	"time"
)

// PeriodType names the kind of report window.
type PeriodType string

const (
	PeriodDay    PeriodType = "day"
	PeriodWeek   PeriodType = "week"
	PeriodCustom PeriodType = "custom"
)

// Period is the half-open time range [Start, End) a report covers.
type Period struct {
	Type  PeriodType
	Start time.Time
	End   time.Time
}

// Today returns the period from local midnight until now.
func Today(now time.Time) Period {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Period{Type: PeriodDay, Start: start, End: now}
}

// ThisWeek returns the period from Monday local midnight until now.
func ThisWeek(now time.Time) Period {
	offset := int(now.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := now.AddDate(0, 0, -offset+1)
	start := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
	return Period{Type: PeriodWeek, Start: start, End: now}
}

// CustomRange builds a period from YYYY-MM-DD date strings. The end date
// is inclusive: the range extends to midnight after it.
func CustomRange(startStr, endStr string, loc *time.Location) (Period, error) {
	start, err := time.ParseInLocation("2006-01-02", startStr, loc)
	if err != nil {
		return Period{}, &ConfigError{Field: "start", Reason: fmt.Sprintf("invalid date %q", startStr)}
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, loc)
	if err != nil {
		return Period{}, &ConfigError{Field: "end", Reason: fmt.Sprintf("invalid date %q", endStr)}
	}
	if start.After(end) {
		return Period{}, &ConfigError{Field: "start", Reason: "start date is after end date"}
	}
	return Period{Type: PeriodCustom, Start: start, End: end.AddDate(0, 0, 1)}, nil
}

// Previous returns the comparison window for this period. The policy is
// a caller contract, not something the comparator infers: a day report
// compares against the immediately preceding day (not the same weekday
// last week), a week report against the immediately preceding 7-day
// window. Custom periods shift back by their own length.
func (p Period) Previous() Period {
	switch p.Type {
	case PeriodDay:
		start := p.Start.AddDate(0, 0, -1)
		return Period{Type: PeriodDay, Start: start, End: p.Start}
	case PeriodWeek:
		start := p.Start.AddDate(0, 0, -7)
		return Period{Type: PeriodWeek, Start: start, End: p.Start}
	default:
		length := p.End.Sub(p.Start)
		return Period{Type: PeriodCustom, Start: p.Start.Add(-length), End: p.Start}
	}
}

// Label returns a human-readable name for the period type.
func (p Period) Label() string {
	switch p.Type {
	case PeriodDay:
		return "Daily report"
	case PeriodWeek:
		return "Weekly report"
	default:
		return "Custom period"
	}
}

// Key identifies a (type, start) pair for snapshot storage.
func (p Period) Key() string {
	return fmt.Sprintf("%s:%s", p.Type, p.Start.Format("2006-01-02"))
}

func (p Period) String() string {
	return fmt.Sprintf("%s ~ %s", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}
