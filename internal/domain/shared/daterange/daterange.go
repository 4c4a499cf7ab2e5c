package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
	ErrBadDate      = errors.New("daterange: date must be YYYY-MM-DD")
)

// ISODate is the wire format for whole calendar days.
const ISODate = "2006-01-02"

// Day truncates t to a whole calendar day in UTC. All dates handled by the
// engine are midnight-UTC instants; there is no finer time component.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Date builds a whole calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// FormatDate renders a day as ISO YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(ISODate)
}

// AddDays shifts a day by n whole days.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// DateRange is a half-open interval [CheckIn, CheckOut): the check-out day is
// the first day no longer occupied.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// New normalizes both bounds to whole days and validates the interval.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Days is the occupied day count; back-to-back ranges share no day.
func (dr DateRange) Days() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDay reports whether the day falls inside [CheckIn, CheckOut).
func (dr DateRange) ContainsDay(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

func (dr DateRange) String() string {
	return FormatDate(dr.CheckIn) + "/" + FormatDate(dr.CheckOut)
}
