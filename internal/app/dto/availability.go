package dto

import (
	"time"

	"lendaround/internal/domain/availability"
	"lendaround/internal/domain/shared/daterange"
)

// UnavailableDates feeds the calendar grid: the ordered ISO dates in the
// requested window on which a rental cannot start.
type UnavailableDates struct {
	ListingID string   `json:"listing_id"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Dates     []string `json:"dates"`
}

func MapUnavailableDates(listingID string, from, to time.Time, days []time.Time) UnavailableDates {
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, daterange.FormatDate(d))
	}
	return UnavailableDates{
		ListingID: listingID,
		From:      daterange.FormatDate(from),
		To:        daterange.FormatDate(to),
		Dates:     dates,
	}
}

type ConflictingRange struct {
	Kind      string `json:"kind"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Reference string `json:"reference"`
}

// RangeValidation is the serializable validation verdict shared by the
// client-side pre-check and the server-side gate.
type RangeValidation struct {
	Valid             bool               `json:"valid"`
	Conflicts         []string           `json:"conflicts,omitempty"`
	ConflictingRanges []ConflictingRange `json:"conflicting_ranges,omitempty"`
	SuggestedCheckOut string             `json:"suggested_check_out,omitempty"`
	Reason            string             `json:"reason,omitempty"`
}

func MapRangeValidation(res availability.ValidationResult) RangeValidation {
	out := RangeValidation{Valid: res.Valid, Reason: res.Reason}
	for _, k := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, string(k))
	}
	for _, cr := range res.ConflictingRanges {
		out.ConflictingRanges = append(out.ConflictingRanges, ConflictingRange{
			Kind:      string(cr.Kind),
			Start:     daterange.FormatDate(cr.Range.CheckIn),
			End:       daterange.FormatDate(cr.Range.CheckOut),
			Reference: cr.Reference,
		})
	}
	if res.HasSuggestion() {
		out.SuggestedCheckOut = daterange.FormatDate(res.SuggestedCheckOut)
	}
	return out
}

type BlackoutPeriod struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

func MapBlackoutPeriod(b availability.BlackoutPeriod) BlackoutPeriod {
	return BlackoutPeriod{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		StartDate: daterange.FormatDate(b.StartDate),
		EndDate:   daterange.FormatDate(b.EndDate),
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

// CheckInRules echoes the stored policy back to the owner. An empty rule set
// reads as the open policy.
type CheckInRules struct {
	ListingID string `json:"listing_id"`
	Open      bool   `json:"open"`
	Weekdays  []int  `json:"weekdays"`
}

func MapCheckInRules(listingID string, policy availability.CheckInPolicy) CheckInRules {
	out := CheckInRules{ListingID: listingID, Open: policy.IsOpen(), Weekdays: []int{}}
	for _, d := range policy.Weekdays() {
		out.Weekdays = append(out.Weekdays, int(d))
	}
	return out
}
