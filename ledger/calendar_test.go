package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/loan-engine/ledger"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate_Valid(t *testing.T) {
	d, err := ledger.ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, ledger.NewDate(2024, time.March, 1), d)
	assert.Equal(t, "2024-03-01", d.String())
}

func TestParseDate_RejectsBadShapes(t *testing.T) {
	for _, input := range []string{"2024-3-1", "01-03-2024", "2024/03/01", "2024-03-01T00:00", "", "2024-13-40"} {
		_, err := ledger.ParseDate(input)
		assert.ErrorIs(t, err, ledger.ErrInvalidDateFormat, "input %q", input)
	}
}

func TestDate_Comparison(t *testing.T) {
	a := ledger.NewDate(2024, time.March, 1)
	b := ledger.NewDate(2024, time.March, 2)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}

func TestDate_StartAndEndOfDay(t *testing.T) {
	d := ledger.NewDate(2024, time.March, 1)

	start := d.StartOfDay()
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())

	end := d.EndOfDay()
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 0, end.Second())
}

func TestAddDuration(t *testing.T) {
	base := ledger.NewDate(2024, time.January, 31)

	tests := []struct {
		name string
		dur  ledger.Duration
		want ledger.Date
	}{
		{"days", ledger.Duration{Amount: 3, Unit: ledger.UnitDays}, ledger.NewDate(2024, time.February, 3)},
		{"weeks", ledger.Duration{Amount: 2, Unit: ledger.UnitWeeks}, ledger.NewDate(2024, time.February, 14)},
		// Jan 31 + 1 month rolls over to March per standard calendar arithmetic.
		{"months roll over", ledger.Duration{Amount: 1, Unit: ledger.UnitMonths}, ledger.NewDate(2024, time.March, 2)},
		{"years", ledger.Duration{Amount: 1, Unit: ledger.UnitYears}, ledger.NewDate(2025, time.January, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.AddDuration(base, tt.dur))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := ledger.NewDate(2024, time.March, 1)
	assert.Equal(t, 0, ledger.DaysBetween(a, a))
	assert.Equal(t, 1, ledger.DaysBetween(a.AddDays(1), a))
	assert.Equal(t, 180, ledger.DaysBetween(a.AddDays(180), a))
	assert.Equal(t, -1, ledger.DaysBetween(a, a.AddDays(1)))
}

// =============================================================================
// CALENDAR TESTS
// =============================================================================

func TestDate_IsWeekend(t *testing.T) {
	assert.False(t, ledger.NewDate(2024, time.March, 1).IsWeekend()) // Friday
	assert.True(t, ledger.NewDate(2024, time.March, 2).IsWeekend())  // Saturday
	assert.True(t, ledger.NewDate(2024, time.March, 3).IsWeekend())  // Sunday
	assert.False(t, ledger.NewDate(2024, time.March, 4).IsWeekend()) // Monday
}

func TestCalendar_IsHoliday_IgnoresYear(t *testing.T) {
	cal := ledger.DefaultCalendar()

	assert.True(t, cal.IsHoliday(ledger.NewDate(2024, time.March, 8)))
	assert.True(t, cal.IsHoliday(ledger.NewDate(1999, time.March, 8)))
	assert.False(t, cal.IsHoliday(ledger.NewDate(2024, time.March, 9)))
}

func TestCalendar_AdjustToWorkday_SkipsWeekend(t *testing.T) {
	cal := ledger.DefaultCalendar()
	max := ledger.NewDate(2024, time.December, 31)

	// Saturday -> Monday
	got := cal.AdjustToWorkday(ledger.NewDate(2024, time.March, 2), max)
	assert.Equal(t, ledger.NewDate(2024, time.March, 4), got)

	// Workday stays put
	got = cal.AdjustToWorkday(ledger.NewDate(2024, time.March, 4), max)
	assert.Equal(t, ledger.NewDate(2024, time.March, 4), got)
}

func TestCalendar_AdjustToWorkday_SkipsHolidayRun(t *testing.T) {
	// GIVEN: Jan 1-8 are holidays, and Jan 11-12 2025 are a weekend
	// WHEN: adjusting Jan 1 2025
	// THEN: the first workday after the run is returned
	cal := ledger.DefaultCalendar()
	max := ledger.NewDate(2025, time.December, 31)

	got := cal.AdjustToWorkday(ledger.NewDate(2025, time.January, 1), max)
	assert.Equal(t, ledger.NewDate(2025, time.January, 9), got)
}

func TestCalendar_AdjustToWorkday_CapWins(t *testing.T) {
	// GIVEN: the max date itself falls on a Sunday
	// WHEN: the candidate cannot reach a workday before the cap
	// THEN: the cap is returned even though it is not a workday
	cal := ledger.DefaultCalendar()

	saturday := ledger.NewDate(2024, time.March, 2)
	sunday := ledger.NewDate(2024, time.March, 3)

	got := cal.AdjustToWorkday(saturday, sunday)
	assert.Equal(t, sunday, got)
}

func TestSemesterEnd(t *testing.T) {
	assert.Equal(t, ledger.NewDate(2024, time.June, 30), ledger.SemesterEnd(ledger.NewDate(2024, time.May, 1)))
	assert.Equal(t, ledger.NewDate(2024, time.June, 30), ledger.SemesterEnd(ledger.NewDate(2024, time.June, 30)))
	assert.Equal(t, ledger.NewDate(2024, time.December, 31), ledger.SemesterEnd(ledger.NewDate(2024, time.July, 1)))
	assert.Equal(t, ledger.NewDate(2024, time.December, 31), ledger.SemesterEnd(ledger.NewDate(2024, time.November, 15)))
}
