// Package models defines dashboard snapshots and the window arithmetic they
// are built on.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	ledger "marketlevy/internal/ledger/models"
	dErrors "marketlevy/pkg/domain-errors"
)

// Direction is the trend of a metric against its previous window.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	// DirectionFlat is only produced when both windows are zero.
	DirectionFlat Direction = "flat"
)

var hundred = decimal.NewFromInt(100)

// MetricSnapshot is one metric in the current window compared with the
// previous window of equal length.
type MetricSnapshot struct {
	Current          decimal.Decimal `json:"current"`
	Previous         decimal.Decimal `json:"previous"`
	PercentageChange float64         `json:"percentage_change"`
	Direction        Direction       `json:"direction"`
}

// ComputeChange compares current with previous. A zero previous value
// reports 100% up when current is positive and 0% flat otherwise.
func ComputeChange(current, previous decimal.Decimal) MetricSnapshot {
	snap := MetricSnapshot{Current: current, Previous: previous}
	if previous.IsZero() {
		if current.IsPositive() {
			snap.PercentageChange = 100
			snap.Direction = DirectionUp
		} else {
			snap.Direction = DirectionFlat
		}
		return snap
	}
	pct := current.Sub(previous).Div(previous).Abs().Mul(hundred).Round(1)
	snap.PercentageChange = pct.InexactFloat64()
	if current.GreaterThanOrEqual(previous) {
		snap.Direction = DirectionUp
	} else {
		snap.Direction = DirectionDown
	}
	return snap
}

// GetPreviousWindow returns the window of the same day count that ends the
// day before current starts.
func GetPreviousWindow(current ledger.DateRange) ledger.DateRange {
	end := current.Start.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(current.Days() - 1))
	return ledger.DateRange{Start: start, End: end}
}

// WindowLabel names a dashboard window relative to today.
type WindowLabel string

const (
	WindowToday      WindowLabel = "today"
	WindowThisWeek   WindowLabel = "this_week"
	WindowThisMonth  WindowLabel = "this_month"
	WindowThisYear   WindowLabel = "this_year"
	WindowLast7Days  WindowLabel = "last_7_days"
	WindowLast30Days WindowLabel = "last_30_days"
)

// Labels lists every window the dashboard serves, in display order.
var Labels = []WindowLabel{
	WindowToday, WindowThisWeek, WindowThisMonth, WindowThisYear, WindowLast7Days, WindowLast30Days,
}

// ParseWindowLabel accepts a known label. Empty means today.
func ParseWindowLabel(s string) (WindowLabel, error) {
	if s == "" {
		return WindowToday, nil
	}
	for _, l := range Labels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown dashboard window "+s)
}

// ResolveWindow turns a label into the inclusive day range ending today in
// now's location. "this_*" windows are to-date: this_month on the 10th covers
// days 1 through 10 and compares with the 10 days before.
func ResolveWindow(label WindowLabel, now time.Time) (ledger.DateRange, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var start time.Time
	switch label {
	case WindowToday:
		start = today
	case WindowThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start = today.AddDate(0, 0, -offset)
	case WindowThisMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case WindowThisYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
	case WindowLast7Days:
		start = today.AddDate(0, 0, -6)
	case WindowLast30Days:
		start = today.AddDate(0, 0, -29)
	default:
		return ledger.DateRange{}, dErrors.New(dErrors.CodeValidation, "unknown dashboard window "+string(label))
	}
	return ledger.DateRange{Start: start, End: today}, nil
}

// Range is the wire form of a day range.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func RangeOf(r ledger.DateRange) Range {
	return Range{From: r.Start.Format(time.DateOnly), To: r.End.Format(time.DateOnly)}
}

// Dashboard is the chairman overview for one window.
type Dashboard struct {
	Window           WindowLabel    `json:"window"`
	Current          Range          `json:"current"`
	Previous         Range          `json:"previous"`
	Traders          MetricSnapshot `json:"traders"`
	Caretakers       MetricSnapshot `json:"caretakers"`
	LevyTotal        MetricSnapshot `json:"levy_total"`
	ComplianceRate   MetricSnapshot `json:"compliance_rate"`
	TransactionCount MetricSnapshot `json:"transaction_count"`
	ActiveMarkets    MetricSnapshot `json:"active_markets"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// ComplianceRate is paying traders over active traders as a percentage,
// rounded to one decimal. No active traders gives 0.
func ComplianceRate(paying, active int64) decimal.Decimal {
	if active <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(paying).Mul(hundred).Div(decimal.NewFromInt(active)).Round(1)
}
