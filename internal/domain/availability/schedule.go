package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
	"lendaround/internal/domain/shared/events"
)

var (
	ErrBlackoutOrder    = errors.New("availability: blackout end date must be after start date")
	ErrBlackoutNotFound = errors.New("availability: blackout period not found")
)

type BlackoutID string

// BlackoutPeriod is an owner-declared unavailable interval. Both bounds are
// inclusive whole calendar days, unlike booking ranges.
type BlackoutPeriod struct {
	ID        BlackoutID
	ListingID listings.ListingID
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	CreatedAt time.Time
}

// Covers reports whether the day falls within [StartDate, EndDate] inclusive.
func (b BlackoutPeriod) Covers(day time.Time) bool {
	day = daterange.Day(day)
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// Intersects tests inclusive-inclusive overlap against another inclusive
// interval: start <= b.EndDate && end >= b.StartDate. A shared boundary day
// counts as overlap.
func (b BlackoutPeriod) Intersects(start, end time.Time) bool {
	return !daterange.Day(start).After(b.EndDate) && !daterange.Day(end).Before(b.StartDate)
}

// OverlapError rejects a new blackout that collides with an existing one,
// naming the colliding period.
type OverlapError struct {
	Existing BlackoutPeriod
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("availability: blackout overlaps existing period %s (%s to %s)",
		e.Existing.ID, daterange.FormatDate(e.Existing.StartDate), daterange.FormatDate(e.Existing.EndDate))
}

// Schedule is the per-listing availability aggregate: the check-in weekday
// policy plus the owner's blackout periods, kept sorted by start date.
type Schedule struct {
	ListingID listings.ListingID
	Policy    CheckInPolicy
	Blackouts []BlackoutPeriod
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Schedule(ctx context.Context, id listings.ListingID) (*Schedule, error)
	Save(ctx context.Context, schedule *Schedule) error
}

func NewSchedule(id listings.ListingID) *Schedule {
	return &Schedule{ListingID: id, Policy: OpenPolicy()}
}

// ReplaceCheckInRules swaps the entire weekday rule set atomically. An empty
// set reopens the policy: storage cannot represent "available on no day", so
// clearing the rules and never having set them read back the same.
func (s *Schedule) ReplaceCheckInRules(days []time.Weekday, now time.Time) {
	if len(days) == 0 {
		s.Policy = OpenPolicy()
	} else {
		s.Policy = RestrictedPolicy(days...)
	}
	s.Record(CheckInRulesReplaced{ListingID: s.ListingID, Weekdays: s.Policy.Weekdays(), Open: s.Policy.IsOpen(), At: now.UTC()})
}

// AddBlackout appends a new blackout period. The end date must be strictly
// after the start date and the inclusive range must not intersect any
// existing period; collisions come back as *OverlapError.
func (s *Schedule) AddBlackout(id BlackoutID, start, end time.Time, reason string, now time.Time) (BlackoutPeriod, error) {
	start = daterange.Day(start)
	end = daterange.Day(end)
	if !end.After(start) {
		return BlackoutPeriod{}, ErrBlackoutOrder
	}
	for _, existing := range s.Blackouts {
		if existing.Intersects(start, end) {
			return BlackoutPeriod{}, &OverlapError{Existing: existing}
		}
	}
	period := BlackoutPeriod{
		ID:        id,
		ListingID: s.ListingID,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		CreatedAt: now.UTC(),
	}
	s.Blackouts = append(s.Blackouts, period)
	sort.Slice(s.Blackouts, func(i, j int) bool {
		return s.Blackouts[i].StartDate.Before(s.Blackouts[j].StartDate)
	})
	s.Record(BlackoutAdded{ListingID: s.ListingID, BlackoutID: id, StartDate: start, EndDate: end, Reason: reason, At: now.UTC()})
	return period, nil
}

// RemoveBlackout deletes a period by id. Blackouts are never mutated in
// place; remove and re-add is the only edit path.
func (s *Schedule) RemoveBlackout(id BlackoutID, now time.Time) error {
	idx := -1
	for i, b := range s.Blackouts {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrBlackoutNotFound
	}
	removed := s.Blackouts[idx]
	s.Blackouts = append(s.Blackouts[:idx], s.Blackouts[idx+1:]...)
	s.Record(BlackoutRemoved{ListingID: s.ListingID, BlackoutID: removed.ID, StartDate: removed.StartDate, EndDate: removed.EndDate, At: now.UTC()})
	return nil
}

// BlackoutOn returns the period covering the day, if any.
func (s *Schedule) BlackoutOn(day time.Time) (BlackoutPeriod, bool) {
	for _, b := range s.Blackouts {
		if b.Covers(day) {
			return b, true
		}
	}
	return BlackoutPeriod{}, false
}

// IsBlackedOut reports whether the day falls inside any blackout period.
func (s *Schedule) IsBlackedOut(day time.Time) bool {
	_, ok := s.BlackoutOn(day)
	return ok
}
