package models

import (
	"strings"
	"time"

	dErrors "marketlevy/pkg/domain-errors"
)

// Period is the billing cadence of a trader's levy.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	// PeriodCustom levies are billed on a one-day window.
	PeriodCustom Period = "custom"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly, PeriodCustom:
		return true
	}
	return false
}

func (p Period) String() string { return string(p) }

// ParsePeriod accepts any casing ("Weekly", "WEEKLY").
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown levy period "+s)
	}
	return p, nil
}

// Window is a half-open billing window [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// GetBillingWindow returns the window containing reference, computed in
// reference's location. It is the only definition of a billing window:
//
//	daily   the calendar day
//	weekly  the ISO week, Monday 00:00 to the following Monday
//	monthly the calendar month
//	yearly  the calendar year
//	custom  the calendar day
func GetBillingWindow(period Period, reference time.Time) (Window, error) {
	y, m, d := reference.Date()
	loc := reference.Location()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch period {
	case PeriodDaily, PeriodCustom:
		return Window{Start: day, End: day.AddDate(0, 0, 1)}, nil
	case PeriodWeekly:
		// time.Weekday has Sunday = 0; ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return Window{Start: start, End: start.AddDate(0, 0, 7)}, nil
	case PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
	case PeriodYearly:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return Window{Start: start, End: start.AddDate(1, 0, 0)}, nil
	default:
		return Window{}, dErrors.New(dErrors.CodeValidation, "unknown levy period "+string(period))
	}
}

// DateRange is an inclusive range of calendar days used for listings and
// dashboards. Start and End are both day starts in the same location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalises start and end to day starts in loc.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	s := startOfDay(start.In(loc))
	e := startOfDay(end.In(loc))
	if e.Before(s) {
		return DateRange{}, dErrors.New(dErrors.CodeValidation, "date range end is before start")
	}
	return DateRange{Start: s, End: e}, nil
}

// Days is the number of calendar days covered, at least 1.
func (r DateRange) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Bounds converts the inclusive day range into a half-open instant range.
func (r DateRange) Bounds() (from, to time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
