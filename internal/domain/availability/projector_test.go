package availability

import (
	"testing"
	"time"

	"lendaround/internal/domain/booking"
	"lendaround/internal/domain/shared/daterange"
)

func TestUnavailableCheckInDates(t *testing.T) {
	s := NewSchedule("listing-1")
	if _, err := s.AddBlackout("b1", date(t, "2026-05-10"), date(t, "2026-05-11"), "", time.Now()); err != nil {
		t.Fatal(err)
	}
	p := Projector{Schedule: s, Stays: []booking.Stay{stay(t, "bk-1", "2026-05-14", "2026-05-16")}}

	got := p.UnavailableCheckInDates(date(t, "2026-05-08"), date(t, "2026-05-16"))
	want := []string{"2026-05-10", "2026-05-11", "2026-05-14", "2026-05-15"}
	if len(got) != len(want) {
		t.Fatalf("got %d dates %v, want %v", len(got), got, want)
	}
	for i, w := range want {
		if daterange.FormatDate(got[i]) != w {
			t.Fatalf("date %d = %s, want %s", i, daterange.FormatDate(got[i]), w)
		}
	}
}

// Every date the projector marks unavailable must fail a one-day validation,
// and every date it omits must pass one. The calendar and the validator can
// never disagree.
func TestProjectorAgreesWithValidator(t *testing.T) {
	s := NewSchedule("listing-1")
	s.ReplaceCheckInRules([]time.Weekday{time.Monday, time.Thursday, time.Friday, time.Saturday, time.Sunday}, time.Now())
	if _, err := s.AddBlackout("b1", date(t, "2026-05-07"), date(t, "2026-05-09"), "", time.Now()); err != nil {
		t.Fatal(err)
	}
	stays := []booking.Stay{
		stay(t, "bk-1", "2026-05-14", "2026-05-18"),
		stay(t, "bk-2", "2026-05-21", "2026-05-23"),
	}
	p := Projector{Schedule: s, Stays: stays}
	r := Resolver{Schedule: s, Stays: stays}

	from, to := date(t, "2026-05-01"), date(t, "2026-05-31")
	marked := map[string]bool{}
	for _, d := range p.UnavailableCheckInDates(from, to) {
		marked[daterange.FormatDate(d)] = true
	}
	for day := from; !day.After(to); day = daterange.AddDays(day, 1) {
		verdict := r.ValidateRange(day, daterange.AddDays(day, 1))
		if verdict.Valid == marked[daterange.FormatDate(day)] {
			t.Fatalf("%s: projector marked=%v but one-day validation valid=%v",
				daterange.FormatDate(day), marked[daterange.FormatDate(day)], verdict.Valid)
		}
	}
}
