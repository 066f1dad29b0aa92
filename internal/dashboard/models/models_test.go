package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledger "marketlevy/internal/ledger/models"
	dErrors "marketlevy/pkg/domain-errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeChange(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		previous  string
		pct       float64
		direction Direction
	}{
		{"growth", "150", "100", 50, DirectionUp},
		{"decline", "75", "100", 25, DirectionDown},
		{"unchanged counts as up", "100", "100", 0, DirectionUp},
		{"rounds to one decimal", "2", "3", 33.3, DirectionDown},
		{"rounds half away from zero", "200.1", "200", 0.1, DirectionUp},
		{"truncates long fractions", "1001", "1600", 37.4, DirectionDown},
		{"from zero", "12", "0", 100, DirectionUp},
		{"zero to zero", "0", "0", 0, DirectionFlat},
		{"to zero", "0", "40", 100, DirectionDown},
		{"money", "1250.50", "1000.00", 25.1, DirectionUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := ComputeChange(dec(tt.current), dec(tt.previous))
			assert.Equal(t, tt.pct, snap.PercentageChange)
			assert.Equal(t, tt.direction, snap.Direction)
			assert.True(t, dec(tt.current).Equal(snap.Current))
			assert.True(t, dec(tt.previous).Equal(snap.Previous))
		})
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGetPreviousWindow(t *testing.T) {
	t.Run("single day compares with yesterday", func(t *testing.T) {
		prev := GetPreviousWindow(ledger.DateRange{Start: day(2026, 3, 1), End: day(2026, 3, 1)})
		assert.Equal(t, day(2026, 2, 28), prev.Start)
		assert.Equal(t, day(2026, 2, 28), prev.End)
	})

	t.Run("month to date compares by day count", func(t *testing.T) {
		current := ledger.DateRange{Start: day(2026, 3, 1), End: day(2026, 3, 31)}
		prev := GetPreviousWindow(current)
		assert.Equal(t, day(2026, 1, 29), prev.Start)
		assert.Equal(t, day(2026, 2, 28), prev.End)
		assert.Equal(t, current.Days(), prev.Days())
	})

	t.Run("adjacent and equal length", func(t *testing.T) {
		current := ledger.DateRange{Start: day(2024, 2, 20), End: day(2024, 3, 5)}
		prev := GetPreviousWindow(current)
		assert.Equal(t, current.Start.AddDate(0, 0, -1), prev.End)
		assert.Equal(t, current.Days(), prev.Days())
	})
}

func TestResolveWindow(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		label WindowLabel
		start time.Time
	}{
		{WindowToday, day(2026, 3, 18)},
		{WindowThisWeek, day(2026, 3, 16)},
		{WindowThisMonth, day(2026, 3, 1)},
		{WindowThisYear, day(2026, 1, 1)},
		{WindowLast7Days, day(2026, 3, 12)},
		{WindowLast30Days, day(2026, 2, 17)},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			r, err := ResolveWindow(tt.label, now)
			require.NoError(t, err)
			assert.Equal(t, tt.start, r.Start)
			assert.Equal(t, day(2026, 3, 18), r.End)
		})
	}

	t.Run("this week on a sunday starts on monday", func(t *testing.T) {
		r, err := ResolveWindow(WindowThisWeek, time.Date(2026, 3, 22, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, day(2026, 3, 16), r.Start)
		assert.Equal(t, 7, r.Days())
	})

	t.Run("unknown label", func(t *testing.T) {
		_, err := ResolveWindow("fortnight", now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestParseWindowLabel(t *testing.T) {
	l, err := ParseWindowLabel("")
	require.NoError(t, err)
	assert.Equal(t, WindowToday, l)

	l, err = ParseWindowLabel("last_7_days")
	require.NoError(t, err)
	assert.Equal(t, WindowLast7Days, l)

	_, err = ParseWindowLabel("yesterday")
	assert.Error(t, err)
}

func TestComplianceRate(t *testing.T) {
	assert.True(t, dec("66.7").Equal(ComplianceRate(2, 3)))
	assert.True(t, dec("100").Equal(ComplianceRate(5, 5)))
	assert.True(t, decimal.Zero.Equal(ComplianceRate(3, 0)))
}
