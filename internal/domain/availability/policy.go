package availability

import "time"

// CheckInPolicy decides which weekdays are eligible to start a rental.
//
// The zero value is the open policy: every weekday eligible. A restricted
// policy carries an explicit weekday set; a restricted policy with an empty
// set ("eligible on no day") is representable, which keeps "never set" and
// "explicitly cleared" distinct states even though the replace-rules
// operation collapses the latter to open at the storage boundary.
type CheckInPolicy struct {
	restricted bool
	days       [7]bool
}

// OpenPolicy allows check-in on any weekday.
func OpenPolicy() CheckInPolicy {
	return CheckInPolicy{}
}

// RestrictedPolicy allows check-in only on the given weekdays.
func RestrictedPolicy(days ...time.Weekday) CheckInPolicy {
	p := CheckInPolicy{restricted: true}
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			p.days[d] = true
		}
	}
	return p
}

func (p CheckInPolicy) IsOpen() bool {
	return !p.restricted
}

// AllowsCheckIn reports whether the day's weekday is eligible for pickup.
// Only the check-in day is subject to weekday policy; check-out is not.
func (p CheckInPolicy) AllowsCheckIn(day time.Time) bool {
	if !p.restricted {
		return true
	}
	return p.days[day.UTC().Weekday()]
}

// Weekdays lists the eligible weekdays in Sunday-first order. Nil for the
// open policy.
func (p CheckInPolicy) Weekdays() []time.Weekday {
	if !p.restricted {
		return nil
	}
	out := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if p.days[d] {
			out = append(out, d)
		}
	}
	return out
}
