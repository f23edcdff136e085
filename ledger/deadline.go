package ledger

import (
	"fmt"
	"time"
)

// =============================================================================
// DEADLINE ENGINE - Requested duration -> validated due date
// =============================================================================

// MaxHorizonDays is the longest span allowed between today and any due
// date, in calendar days.
const MaxHorizonDays = 180

// HintMovedToWorkday is the advisory raised when a candidate due date was
// adjusted away from a weekend or holiday, or clamped at the horizon.
// Non-blocking: the loan is still created.
const HintMovedToWorkday = "date moved to nearest workday"

// Preset names a common loan duration.
type Preset string

const (
	PresetTwoWeeks         Preset = "two_weeks"
	PresetOneMonth         Preset = "one_month"
	PresetUntilSemesterEnd Preset = "until_semester_end"
)

// Deadline is a validated due date. Loans are due at end of day (23:59),
// so a same-day return is still on time.
type Deadline struct {
	Due           Date
	DueAt         time.Time
	RemainingDays int
	Hint          string
}

// DeadlineEngine turns a requested duration, preset, or explicit date into
// a due date that lands on a workday and stays within the horizon.
type DeadlineEngine struct {
	Calendar *Calendar
	Horizon  int // calendar days
}

func NewDeadlineEngine(cal *Calendar) *DeadlineEngine {
	return &DeadlineEngine{Calendar: cal, Horizon: MaxHorizonDays}
}

// FromDuration computes the due date for a requested loan length.
func (e *DeadlineEngine) FromDuration(today Date, dur Duration) (Deadline, error) {
	if dur.Amount <= 0 {
		return Deadline{}, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidDuration, dur.Amount)
	}
	return e.validate(today, AddDuration(today, dur))
}

// FromPreset resolves a named preset. UntilSemesterEnd targets the end of
// the current semester, snapped to a workday and clamped at the horizon.
func (e *DeadlineEngine) FromPreset(today Date, p Preset) (Deadline, error) {
	switch p {
	case PresetTwoWeeks:
		return e.FromDuration(today, Duration{Amount: 2, Unit: UnitWeeks})
	case PresetOneMonth:
		return e.FromDuration(today, Duration{Amount: 1, Unit: UnitMonths})
	case PresetUntilSemesterEnd:
		max := e.maxDate(today)
		candidate := SemesterEnd(today)
		adjusted := e.Calendar.AdjustToWorkday(candidate, max)
		if DaysBetween(adjusted, today) > e.Horizon {
			adjusted = max
		}
		return e.finish(today, candidate, adjusted), nil
	default:
		return Deadline{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidDuration, p)
	}
}

// FromDate validates an explicitly entered due date. Unlike durations, a
// picked date can point backwards, so it is additionally rejected when it
// precedes today.
func (e *DeadlineEngine) FromDate(today, picked Date) (Deadline, error) {
	if picked.Before(today) {
		return Deadline{}, fmt.Errorf("%w: %s is before %s", ErrDeadlineInPast, picked, today)
	}
	return e.validate(today, picked)
}

func (e *DeadlineEngine) maxDate(today Date) Date {
	return AddDuration(today, Duration{Amount: e.Horizon, Unit: UnitDays})
}

func (e *DeadlineEngine) validate(today, candidate Date) (Deadline, error) {
	max := e.maxDate(today)
	if DaysBetween(candidate, today) > e.Horizon {
		return Deadline{}, &DeadlineTooFarError{Requested: candidate, Max: max}
	}
	adjusted := e.Calendar.AdjustToWorkday(candidate, max)
	return e.finish(today, candidate, adjusted), nil
}

func (e *DeadlineEngine) finish(today, candidate, adjusted Date) Deadline {
	d := Deadline{
		Due:           adjusted,
		DueAt:         adjusted.EndOfDay(),
		RemainingDays: DaysBetween(adjusted, today),
	}
	if !adjusted.Equal(candidate) {
		d.Hint = HintMovedToWorkday
	}
	return d
}
