package availability

import (
	"time"

	"lendaround/internal/domain/booking"
	"lendaround/internal/domain/shared/daterange"
)

// Projector expands resolver answers over a date window into the set of days
// ineligible for check-in, for rendering a calendar grid. It evaluates the
// same per-day predicate ValidateRange applies to a one-day range, so the two
// can never drift apart.
type Projector struct {
	Schedule *Schedule
	Stays    []booking.Stay
}

// UnavailableCheckInDates lists, in ascending order, every day in the
// inclusive window [from, to] on which a rental cannot start: the weekday is
// excluded by policy, the day is blacked out, or the day falls inside an
// occupying stay.
func (p Projector) UnavailableCheckInDates(from, to time.Time) []time.Time {
	from = daterange.Day(from)
	to = daterange.Day(to)
	var out []time.Time
	for day := from; !day.After(to); day = daterange.AddDays(day, 1) {
		if p.unavailable(day) {
			out = append(out, day)
		}
	}
	return out
}

func (p Projector) unavailable(day time.Time) bool {
	if !p.Schedule.Policy.AllowsCheckIn(day) {
		return true
	}
	if p.Schedule.IsBlackedOut(day) {
		return true
	}
	for _, stay := range p.Stays {
		if stay.Range.ContainsDay(day) {
			return true
		}
	}
	return false
}
