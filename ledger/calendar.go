/*
Package ledger implements the loan ledger engine for a school library.

PURPOSE:
  Tracks who holds which book, since when, whether the loan is overdue, and
  when it is due. The ledger is an append-only sequence of taken/returned
  transactions; every other piece of state (open loans, history, statistics)
  is derived by replaying that sequence. Nothing derived is ever stored.

KEY CONCEPTS:
  - Date: a plain calendar date (no instant, no timezone drift)
  - Transaction: an immutable ledger entry (taken or returned)
  - LoanRecord: a derived taken->returned pairing (or a still-open taken)
  - Calendar: weekend/holiday arithmetic for due-date computation
  - DeadlineEngine: converts a requested duration into a validated due date

DESIGN PRINCIPLES:
  1. Append-only: transactions are never mutated or deleted
  2. Derivations are pure functions of a log snapshot - safe for any reader
  3. Dates are compared as calendar dates, never as instants

SEE ALSO:
  - derive.go: FIFO pairing of taken/returned events
  - ledger.go: the serialized write path
  - deadline.go: due-date validation
*/
package ledger

import (
	"fmt"
	"regexp"
	"time"
)

// =============================================================================
// DATE - Plain calendar date value type
// =============================================================================

// Date is a timezone-stable calendar date. Two Dates compare by their
// (year, month, day) tuple; no instant arithmetic is involved, so the
// workday and overdue logic cannot pick up off-by-one errors across zones.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

var dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func NewDate(year int, month time.Month, day int) Date {
	// Normalize through time.Date so Feb 30 etc. roll over the standard way.
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf extracts the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current calendar date in local time.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a strict YYYY-MM-DD string.
// Returns ErrInvalidDateFormat when the shape or the value is off.
func ParseDate(s string) (Date, error) {
	if !dateShape.MatchString(s) {
		return Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidDateFormat, s)
	}
	return DateOf(t), nil
}

// anchor returns the date at midnight UTC, used only for arithmetic.
func (d Date) anchor() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the date at 00:00:00.000 local time.
func (d Date) StartOfDay() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

// EndOfDay returns the date at 23:59:00.000 local time. Loans are due at
// end of day, so a same-day return is still on time.
func (d Date) EndOfDay() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 0, 0, time.Local)
}

// Comparison
func (d Date) Equal(other Date) bool { return d == other }
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}
func (d Date) After(other Date) bool         { return other.Before(d) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.anchor().AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.anchor().AddDate(0, n, 0)) }
func (d Date) AddYears(n int) Date  { return DateOf(d.anchor().AddDate(n, 0, 0)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.anchor().Weekday() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsZero() bool { return d == Date{} }

// Unix returns the start-of-day timestamp (UTC anchor). Used as the order
// and reference key for ledger derivations.
func (d Date) Unix() int64 { return d.anchor().Unix() }

func (d Date) String() string { return d.anchor().Format(dateLayout) }

// DaysBetween returns the calendar-day difference between two dates,
// ceiling-rounded on start-of-day timestamps. For pure dates the result
// is always exact; the ceiling matters only to callers that feed in
// partial-day instants via DateOf.
func DaysBetween(later, earlier Date) int {
	diff := later.anchor().Sub(earlier.anchor())
	days := diff / (24 * time.Hour)
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// =============================================================================
// DURATION - Requested loan length
// =============================================================================

type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

type Duration struct {
	Amount int
	Unit   Unit
}

// AddDuration advances base by the given duration. Days and weeks are plain
// day arithmetic; months and years roll over per standard calendar rules
// (no extra clamping beyond what time.AddDate performs).
func AddDuration(base Date, dur Duration) Date {
	switch dur.Unit {
	case UnitWeeks:
		return base.AddDays(dur.Amount * 7)
	case UnitMonths:
		return base.AddMonths(dur.Amount)
	case UnitYears:
		return base.AddYears(dur.Amount)
	default:
		return base.AddDays(dur.Amount)
	}
}

// =============================================================================
// CALENDAR - Weekend/holiday lookup and workday adjustment
// =============================================================================

// Holiday is a fixed-date national holiday, matched on (month, day) with
// the year ignored.
type Holiday struct {
	Month time.Month
	Day   int
	Name  string
}

type monthDay struct {
	Month time.Month
	Day   int
}

// Calendar answers workday questions for due-date computation.
type Calendar struct {
	holidays map[monthDay]string
}

func NewCalendar(holidays []Holiday) *Calendar {
	c := &Calendar{holidays: make(map[monthDay]string, len(holidays))}
	for _, h := range holidays {
		c.holidays[monthDay{Month: h.Month, Day: h.Day}] = h.Name
	}
	return c
}

// DefaultCalendar carries the fixed national holidays observed by the
// school year this system models (Jun 30 / Dec 31 semester boundaries).
func DefaultCalendar() *Calendar {
	return NewCalendar([]Holiday{
		{time.January, 1, "New Year"},
		{time.January, 2, "New Year holidays"},
		{time.January, 3, "New Year holidays"},
		{time.January, 4, "New Year holidays"},
		{time.January, 5, "New Year holidays"},
		{time.January, 6, "New Year holidays"},
		{time.January, 7, "Christmas"},
		{time.January, 8, "New Year holidays"},
		{time.February, 23, "Defender of the Fatherland Day"},
		{time.March, 8, "International Women's Day"},
		{time.May, 1, "Spring and Labour Day"},
		{time.May, 9, "Victory Day"},
		{time.June, 12, "National Day"},
		{time.November, 4, "Unity Day"},
	})
}

func (c *Calendar) IsHoliday(d Date) bool {
	_, ok := c.holidays[monthDay{Month: d.Month, Day: d.Day}]
	return ok
}

func (c *Calendar) IsWorkday(d Date) bool {
	return !d.IsWeekend() && !c.IsHoliday(d)
}

// AdjustToWorkday advances candidate one day at a time while it falls on a
// weekend or holiday. The walk is bounded by max: once candidate passes it,
// max itself is returned, even when max is not a workday - the horizon cap
// always wins over the workday rule.
func (c *Calendar) AdjustToWorkday(candidate, max Date) Date {
	if candidate.After(max) {
		return max
	}
	for !c.IsWorkday(candidate) {
		candidate = candidate.AddDays(1)
		if candidate.After(max) {
			return max
		}
	}
	return candidate
}

// SemesterEnd returns the end of the school semester containing base:
// June 30 for January-June, December 31 otherwise.
func SemesterEnd(base Date) Date {
	if base.Month < time.July {
		return Date{Year: base.Year, Month: time.June, Day: 30}
	}
	return Date{Year: base.Year, Month: time.December, Day: 31}
}
