package availability

import (
	"testing"
	"time"

	"lendaround/internal/domain/booking"
	"lendaround/internal/domain/shared/daterange"
)

func stay(t *testing.T, id, checkIn, checkOut string) booking.Stay {
	t.Helper()
	r, err := daterange.New(date(t, checkIn), date(t, checkOut))
	if err != nil {
		t.Fatalf("stay %s: %v", id, err)
	}
	return booking.Stay{BookingID: booking.BookingID(id), Range: r}
}

func TestValidateRangeRejectsIneligiblePickupDay(t *testing.T) {
	s := NewSchedule("listing-1")
	s.ReplaceCheckInRules([]time.Weekday{time.Friday, time.Saturday, time.Sunday}, time.Now())
	r := Resolver{Schedule: s}

	// Wednesday pickup, Friday return: only the pickup day is policed.
	got := r.ValidateRange(date(t, "2026-03-11"), date(t, "2026-03-13"))
	if got.Valid {
		t.Fatalf("expected rejection for Wednesday pickup")
	}
	if !got.HasConflict(ConflictPickupDayNotAllowed) {
		t.Fatalf("expected PICKUP_DAY_NOT_ALLOWED, got %v", got.Conflicts)
	}

	// Friday pickup, Wednesday return is fine.
	if got := r.ValidateRange(date(t, "2026-03-13"), date(t, "2026-03-18")); !got.Valid {
		t.Fatalf("return-day weekday must not be policed: %v", got.Conflicts)
	}
}

func TestValidateRangeRejectsOverlapWithOccupyingStay(t *testing.T) {
	s := NewSchedule("listing-1")
	r := Resolver{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-01-10", "2026-01-20")}}

	got := r.ValidateRange(date(t, "2026-01-12"), date(t, "2026-01-22"))
	if got.Valid {
		t.Fatalf("expected rejection for overlapping stay")
	}
	if !got.HasConflict(ConflictBooking) {
		t.Fatalf("expected BOOKING_CONFLICT, got %v", got.Conflicts)
	}
	if len(got.ConflictingRanges) != 1 || got.ConflictingRanges[0].Reference != "bk-1" {
		t.Fatalf("expected the colliding booking to be named, got %+v", got.ConflictingRanges)
	}
	// Check-in sits inside the stay, so no alternate check-out can help.
	if got.HasSuggestion() {
		t.Fatalf("unexpected suggestion %v", got.SuggestedCheckOut)
	}
}

func TestValidateRangeAllowsBackToBackBookings(t *testing.T) {
	s := NewSchedule("listing-1")
	r := Resolver{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-01-20", "2026-01-25")}}

	// New check-out on the existing check-in day: the handover day is shared,
	// never double-occupied.
	if got := r.ValidateRange(date(t, "2026-01-15"), date(t, "2026-01-20")); !got.Valid {
		t.Fatalf("back-to-back range must validate: %v", got.Conflicts)
	}
	// Starting on the existing check-out day is equally fine.
	if got := r.ValidateRange(date(t, "2026-01-25"), date(t, "2026-01-30")); !got.Valid {
		t.Fatalf("range starting on existing check-out must validate: %v", got.Conflicts)
	}
}

func TestValidateRangeSuggestsLatestCheckOutBeforeBarrier(t *testing.T) {
	s := NewSchedule("listing-1")
	r := Resolver{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-01-20", "2026-01-25")}}

	got := r.ValidateRange(date(t, "2026-01-15"), date(t, "2026-01-23"))
	if got.Valid {
		t.Fatalf("expected rejection")
	}
	if !got.HasSuggestion() {
		t.Fatalf("expected a suggested check-out")
	}
	if want := date(t, "2026-01-19"); !got.SuggestedCheckOut.Equal(want) {
		t.Fatalf("SuggestedCheckOut = %v, want %v", got.SuggestedCheckOut, want)
	}
	// The suggestion itself validates.
	if v := r.ValidateRange(date(t, "2026-01-15"), got.SuggestedCheckOut); !v.Valid {
		t.Fatalf("suggested check-out must validate: %v", v.Conflicts)
	}
	// Checking out the day after the barrier occupies the stay's first night.
	if v := r.ValidateRange(date(t, "2026-01-15"), date(t, "2026-01-21")); v.Valid || !v.HasConflict(ConflictBooking) {
		t.Fatalf("check-out past the barrier must conflict, got valid=%v conflicts=%v", v.Valid, v.Conflicts)
	}
}

func TestValidateRangeBlackoutConflict(t *testing.T) {
	s := NewSchedule("listing-1")
	if _, err := s.AddBlackout("b1", date(t, "2026-02-10"), date(t, "2026-02-12"), "repairs", time.Now()); err != nil {
		t.Fatal(err)
	}
	r := Resolver{Schedule: s}

	got := r.ValidateRange(date(t, "2026-02-08"), date(t, "2026-02-11"))
	if got.Valid || !got.HasConflict(ConflictBlackout) {
		t.Fatalf("expected BLACKOUT_CONFLICT, got valid=%v conflicts=%v", got.Valid, got.Conflicts)
	}
	if want := date(t, "2026-02-09"); !got.SuggestedCheckOut.Equal(want) {
		t.Fatalf("SuggestedCheckOut = %v, want %v", got.SuggestedCheckOut, want)
	}

	// Check-out on the blackout start day would occupy it; the night before
	// is the last safe one.
	if got := r.ValidateRange(date(t, "2026-02-08"), date(t, "2026-02-10")); !got.Valid {
		t.Fatalf("range ending before the blackout must validate: %v", got.Conflicts)
	}
	// The day after the inclusive end is open again.
	if got := r.ValidateRange(date(t, "2026-02-13"), date(t, "2026-02-15")); !got.Valid {
		t.Fatalf("range after the blackout must validate: %v", got.Conflicts)
	}
}

func TestValidateRangeInvalidRange(t *testing.T) {
	r := Resolver{Schedule: NewSchedule("listing-1")}
	got := r.ValidateRange(date(t, "2026-03-15"), date(t, "2026-03-15"))
	if got.Valid || !got.HasConflict(ConflictInvalidRange) {
		t.Fatalf("expected INVALID_RANGE, got valid=%v conflicts=%v", got.Valid, got.Conflicts)
	}
	if got.HasSuggestion() {
		t.Fatalf("invalid ranges carry no suggestion")
	}
}

func TestValidateRangeAccumulatesConflictKinds(t *testing.T) {
	s := NewSchedule("listing-1")
	s.ReplaceCheckInRules([]time.Weekday{time.Friday}, time.Now())
	if _, err := s.AddBlackout("b1", date(t, "2026-03-16"), date(t, "2026-03-17"), "", time.Now()); err != nil {
		t.Fatal(err)
	}
	r := Resolver{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-03-18", "2026-03-20")}}

	// Wednesday pickup crossing both the blackout and the stay.
	got := r.ValidateRange(date(t, "2026-03-11"), date(t, "2026-03-19"))
	for _, kind := range []ConflictKind{ConflictPickupDayNotAllowed, ConflictBlackout, ConflictBooking} {
		if !got.HasConflict(kind) {
			t.Fatalf("missing %s in %v", kind, got.Conflicts)
		}
	}
	// The pickup day itself is ineligible, so no suggestion can validate.
	if got.HasSuggestion() {
		t.Fatalf("unexpected suggestion %v", got.SuggestedCheckOut)
	}
}

func TestSuggestLatestCheckOut(t *testing.T) {
	s := NewSchedule("listing-1")
	if _, err := s.AddBlackout("b1", date(t, "2026-04-10"), date(t, "2026-04-12"), "", time.Now()); err != nil {
		t.Fatal(err)
	}
	r := Resolver{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-04-20", "2026-04-25")}}

	// The blackout start is the first barrier after the check-in.
	got, ok := r.SuggestLatestCheckOut(date(t, "2026-04-05"))
	if !ok || !got.Equal(date(t, "2026-04-09")) {
		t.Fatalf("got %v ok=%v, want 2026-04-09", got, ok)
	}

	// Past the blackout the booking is the barrier.
	got, ok = r.SuggestLatestCheckOut(date(t, "2026-04-13"))
	if !ok || !got.Equal(date(t, "2026-04-19")) {
		t.Fatalf("got %v ok=%v, want 2026-04-19", got, ok)
	}

	// No barrier after the last obstruction: open-ended.
	if _, ok := r.SuggestLatestCheckOut(date(t, "2026-04-25")); ok {
		t.Fatalf("expected no suggestion past the last obstruction")
	}
}
