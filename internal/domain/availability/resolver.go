package availability

import (
	"fmt"
	"strings"
	"time"

	"lendaround/internal/domain/booking"
	"lendaround/internal/domain/shared/daterange"
)

type ConflictKind string

const (
	ConflictInvalidRange        ConflictKind = "INVALID_RANGE"
	ConflictPickupDayNotAllowed ConflictKind = "PICKUP_DAY_NOT_ALLOWED"
	ConflictBooking             ConflictKind = "BOOKING_CONFLICT"
	ConflictBlackout            ConflictKind = "BLACKOUT_CONFLICT"
)

// ConflictingRange identifies the obstruction a proposed range collided with.
// Blackout periods are widened to half-open form so every range here reads
// the same way: the End day itself is free.
type ConflictingRange struct {
	Kind      ConflictKind        `json:"kind"`
	Range     daterange.DateRange `json:"range"`
	Reference string              `json:"reference"`
}

// ValidationResult is the structured answer to "is this range bookable".
// Conflicts are part of a successful computation, never errors; callers
// branch on the result. The same shape serves the client-side pre-check and
// the authoritative server-side gate.
type ValidationResult struct {
	Valid             bool               `json:"valid"`
	Conflicts         []ConflictKind     `json:"conflicts,omitempty"`
	ConflictingRanges []ConflictingRange `json:"conflicting_ranges,omitempty"`
	SuggestedCheckOut time.Time          `json:"suggested_check_out,omitzero"`
	Reason            string             `json:"reason,omitempty"`
}

func (r ValidationResult) HasConflict(kind ConflictKind) bool {
	for _, k := range r.Conflicts {
		if k == kind {
			return true
		}
	}
	return false
}

func (r ValidationResult) HasSuggestion() bool {
	return !r.SuggestedCheckOut.IsZero()
}

// Resolver combines a listing's schedule snapshot with its occupying stays
// and answers eligibility, conflict and suggestion questions as a pure
// function of that snapshot.
type Resolver struct {
	Schedule *Schedule
	Stays    []booking.Stay
}

// ValidateRange decides whether [checkIn, checkOut) is bookable. The check-in
// day alone is subject to weekday policy; every occupied day is checked
// against blackouts and occupying stays. On conflict the result carries the
// union of conflict kinds, the colliding ranges and, when one exists, the
// latest alternate check-out that validates.
func (r Resolver) ValidateRange(checkIn, checkOut time.Time) ValidationResult {
	checkIn = daterange.Day(checkIn)
	checkOut = daterange.Day(checkOut)

	proposed, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return ValidationResult{
			Conflicts: []ConflictKind{ConflictInvalidRange},
			Reason:    "check-out date must be after check-in date",
		}
	}

	var (
		kinds    []ConflictKind
		ranges   []ConflictingRange
		messages []string
	)
	appendKind := func(k ConflictKind) {
		for _, have := range kinds {
			if have == k {
				return
			}
		}
		kinds = append(kinds, k)
	}

	if !r.Schedule.Policy.AllowsCheckIn(checkIn) {
		appendKind(ConflictPickupDayNotAllowed)
		messages = append(messages, fmt.Sprintf("%s is not an eligible pickup day", checkIn.Weekday()))
	}

	for _, b := range r.Schedule.Blackouts {
		blocked := daterange.DateRange{CheckIn: b.StartDate, CheckOut: daterange.AddDays(b.EndDate, 1)}
		if proposed.Overlaps(blocked) {
			appendKind(ConflictBlackout)
			ranges = append(ranges, ConflictingRange{Kind: ConflictBlackout, Range: blocked, Reference: string(b.ID)})
		}
	}
	if len(ranges) > 0 {
		messages = append(messages, "the listing is unavailable on one or more requested days")
	}

	bookingHits := 0
	for _, stay := range r.Stays {
		if proposed.Overlaps(stay.Range) {
			appendKind(ConflictBooking)
			ranges = append(ranges, ConflictingRange{Kind: ConflictBooking, Range: stay.Range, Reference: string(stay.BookingID)})
			bookingHits++
		}
	}
	if bookingHits > 0 {
		messages = append(messages, "the requested days collide with an existing booking")
	}

	if len(kinds) == 0 {
		return ValidationResult{Valid: true}
	}

	result := ValidationResult{
		Conflicts:         kinds,
		ConflictingRanges: ranges,
		Reason:            strings.Join(messages, "; "),
	}
	if suggested, ok := r.SuggestLatestCheckOut(checkIn); ok && r.validates(checkIn, suggested) {
		result.SuggestedCheckOut = suggested
	}
	return result
}

// SuggestLatestCheckOut finds the latest safe check-out for the given
// check-in: one day before the first barrier, where a barrier is the earliest
// occupying-stay check-in or blackout start strictly after the check-in day. No barrier
// means the rental is open-ended and there is nothing to suggest. A single
// pass over the stored obstructions replaces any day-by-day scan.
func (r Resolver) SuggestLatestCheckOut(checkIn time.Time) (time.Time, bool) {
	checkIn = daterange.Day(checkIn)
	var barrier time.Time
	consider := func(day time.Time) {
		if !day.After(checkIn) {
			return
		}
		if barrier.IsZero() || day.Before(barrier) {
			barrier = day
		}
	}
	for _, stay := range r.Stays {
		consider(stay.Range.CheckIn)
	}
	for _, b := range r.Schedule.Blackouts {
		consider(b.StartDate)
	}
	if barrier.IsZero() {
		return time.Time{}, false
	}
	return daterange.AddDays(barrier, -1), true
}

// validates re-runs the range checks without building a result, so a
// suggestion is only ever surfaced when it would itself pass ValidateRange.
func (r Resolver) validates(checkIn, checkOut time.Time) bool {
	proposed, err := daterange.New(checkIn, checkOut)
	if err != nil {
		return false
	}
	if !r.Schedule.Policy.AllowsCheckIn(checkIn) {
		return false
	}
	for _, b := range r.Schedule.Blackouts {
		if proposed.Overlaps(daterange.DateRange{CheckIn: b.StartDate, CheckOut: daterange.AddDays(b.EndDate, 1)}) {
			return false
		}
	}
	for _, stay := range r.Stays {
		if proposed.Overlaps(stay.Range) {
			return false
		}
	}
	return true
}
