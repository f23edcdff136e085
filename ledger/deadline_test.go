package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/loan-engine/ledger"
)

func newEngine() *ledger.DeadlineEngine {
	return ledger.NewDeadlineEngine(ledger.DefaultCalendar())
}

// =============================================================================
// DURATION VALIDATION
// =============================================================================

func TestDeadline_RejectsNonPositiveDuration(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	for _, amount := range []int{0, -1, -30} {
		_, err := engine.FromDuration(today, ledger.Duration{Amount: amount, Unit: ledger.UnitDays})
		assert.ErrorIs(t, err, ledger.ErrInvalidDuration, "amount %d", amount)
	}
}

func TestDeadline_SaturdayCandidateMovesToMonday(t *testing.T) {
	// GIVEN: today is Friday 2024-03-01
	// WHEN: requesting a 1-day loan (candidate Saturday 2024-03-02)
	// THEN: due date moves to Monday 2024-03-04 at end of day, with a hint

	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	deadline, err := engine.FromDuration(today, ledger.Duration{Amount: 1, Unit: ledger.UnitDays})
	require.NoError(t, err)

	assert.Equal(t, ledger.NewDate(2024, time.March, 4), deadline.Due)
	assert.Equal(t, 23, deadline.DueAt.Hour())
	assert.Equal(t, 59, deadline.DueAt.Minute())
	assert.Equal(t, 3, deadline.RemainingDays)
	assert.Equal(t, ledger.HintMovedToWorkday, deadline.Hint)
}

func TestDeadline_WorkdayCandidateKeepsDateNoHint(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1) // Friday

	deadline, err := engine.FromDuration(today, ledger.Duration{Amount: 2, Unit: ledger.UnitWeeks})
	require.NoError(t, err)

	assert.Equal(t, ledger.NewDate(2024, time.March, 15), deadline.Due) // Friday
	assert.Empty(t, deadline.Hint)
	assert.Equal(t, 14, deadline.RemainingDays)
}

func TestDeadline_RejectsBeyondHorizon(t *testing.T) {
	// GIVEN: the horizon is 180 calendar days
	// WHEN: requesting 181 days
	// THEN: rejected, and the error names the latest allowed date

	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	_, err := engine.FromDuration(today, ledger.Duration{Amount: 181, Unit: ledger.UnitDays})
	require.ErrorIs(t, err, ledger.ErrDeadlineTooFar)

	var tooFar *ledger.DeadlineTooFarError
	require.ErrorAs(t, err, &tooFar)
	assert.Equal(t, today.AddDays(180), tooFar.Max)
}

func TestDeadline_BoundsAndWorkdayProperty(t *testing.T) {
	// For all valid durations the due date stays within [today, today+180]
	// and is a workday unless it equals the cap exactly.
	engine := newEngine()
	cal := ledger.DefaultCalendar()
	today := ledger.NewDate(2024, time.March, 1)
	max := today.AddDays(180)

	durations := []ledger.Duration{
		{Amount: 1, Unit: ledger.UnitDays},
		{Amount: 10, Unit: ledger.UnitDays},
		{Amount: 180, Unit: ledger.UnitDays},
		{Amount: 3, Unit: ledger.UnitWeeks},
		{Amount: 1, Unit: ledger.UnitMonths},
		{Amount: 5, Unit: ledger.UnitMonths},
	}
	for _, dur := range durations {
		deadline, err := engine.FromDuration(today, dur)
		require.NoError(t, err, "duration %+v", dur)

		assert.True(t, deadline.Due.AfterOrEqual(today), "duration %+v", dur)
		assert.True(t, deadline.Due.BeforeOrEqual(max), "duration %+v", dur)
		if !deadline.Due.Equal(max) {
			assert.True(t, cal.IsWorkday(deadline.Due), "duration %+v gave %s", dur, deadline.Due)
		}
	}
}

// =============================================================================
// PRESETS
// =============================================================================

func TestDeadline_PresetTwoWeeks(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	deadline, err := engine.FromPreset(today, ledger.PresetTwoWeeks)
	require.NoError(t, err)
	assert.Equal(t, ledger.NewDate(2024, time.March, 15), deadline.Due)
}

func TestDeadline_PresetUntilSemesterEnd_NoClamp(t *testing.T) {
	// GIVEN: today is 2024-05-01, semester end 2024-06-30 (60 days out,
	//        well inside the 180-day horizon, but a Sunday)
	// WHEN: requesting until_semester_end
	// THEN: no clamping occurs; the date only snaps forward to Monday

	engine := newEngine()
	today := ledger.NewDate(2024, time.May, 1)

	deadline, err := engine.FromPreset(today, ledger.PresetUntilSemesterEnd)
	require.NoError(t, err)

	assert.Equal(t, ledger.NewDate(2024, time.July, 1), deadline.Due)
	assert.NotEqual(t, today.AddDays(180), deadline.Due, "must not be clamped at the horizon")
	assert.LessOrEqual(t, deadline.RemainingDays, 180)
}

func TestDeadline_PresetUntilSemesterEnd_ClampsAtHorizon(t *testing.T) {
	// GIVEN: today is 2024-07-01, semester end 2024-12-31 (183 days out)
	// WHEN: requesting until_semester_end
	// THEN: the due date clamps to the 180-day cap with the advisory hint

	engine := newEngine()
	today := ledger.NewDate(2024, time.July, 1)

	deadline, err := engine.FromPreset(today, ledger.PresetUntilSemesterEnd)
	require.NoError(t, err)

	assert.Equal(t, today.AddDays(180), deadline.Due)
	assert.Equal(t, ledger.HintMovedToWorkday, deadline.Hint)
	assert.Equal(t, 180, deadline.RemainingDays)
}

func TestDeadline_UnknownPresetRejected(t *testing.T) {
	engine := newEngine()
	_, err := engine.FromPreset(ledger.NewDate(2024, time.March, 1), ledger.Preset("forever"))
	assert.ErrorIs(t, err, ledger.ErrInvalidDuration)
}

// =============================================================================
// DIRECT DATE ENTRY
// =============================================================================

func TestDeadline_FromDate_RejectsPast(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	_, err := engine.FromDate(today, ledger.NewDate(2024, time.February, 29))
	assert.ErrorIs(t, err, ledger.ErrDeadlineInPast)
}

func TestDeadline_FromDate_TodayIsAllowed(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1) // Friday, workday

	deadline, err := engine.FromDate(today, today)
	require.NoError(t, err)
	assert.Equal(t, today, deadline.Due)
	assert.Equal(t, 0, deadline.RemainingDays)
}

func TestDeadline_FromDate_StillSnapsAndCaps(t *testing.T) {
	engine := newEngine()
	today := ledger.NewDate(2024, time.March, 1)

	// Picked a Saturday: snaps to Monday.
	deadline, err := engine.FromDate(today, ledger.NewDate(2024, time.March, 2))
	require.NoError(t, err)
	assert.Equal(t, ledger.NewDate(2024, time.March, 4), deadline.Due)
	assert.Equal(t, ledger.HintMovedToWorkday, deadline.Hint)

	// Picked beyond the horizon: rejected.
	_, err = engine.FromDate(today, today.AddDays(181))
	assert.ErrorIs(t, err, ledger.ErrDeadlineTooFar)
}
