package availability

import (
	"time"

	"lendaround/internal/domain/listings"
)

type CheckInRulesReplaced struct {
	ListingID listings.ListingID `json:"listing_id"`
	Weekdays  []time.Weekday     `json:"weekdays"`
	Open      bool               `json:"open"`
	At        time.Time          `json:"at"`
}

func (e CheckInRulesReplaced) EventName() string     { return "availability.rules_replaced" }
func (e CheckInRulesReplaced) AggregateID() string   { return string(e.ListingID) }
func (e CheckInRulesReplaced) OccurredAt() time.Time { return e.At }

type BlackoutAdded struct {
	ListingID  listings.ListingID `json:"listing_id"`
	BlackoutID BlackoutID         `json:"blackout_id"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    time.Time          `json:"end_date"`
	Reason     string             `json:"reason,omitempty"`
	At         time.Time          `json:"at"`
}

func (e BlackoutAdded) EventName() string     { return "availability.blackout_added" }
func (e BlackoutAdded) AggregateID() string   { return string(e.ListingID) }
func (e BlackoutAdded) OccurredAt() time.Time { return e.At }

type BlackoutRemoved struct {
	ListingID  listings.ListingID `json:"listing_id"`
	BlackoutID BlackoutID         `json:"blackout_id"`
	StartDate  time.Time          `json:"start_date"`
	EndDate    time.Time          `json:"end_date"`
	At         time.Time          `json:"at"`
}

func (e BlackoutRemoved) EventName() string     { return "availability.blackout_removed" }
func (e BlackoutRemoved) AggregateID() string   { return string(e.ListingID) }
func (e BlackoutRemoved) OccurredAt() time.Time { return e.At }

// DoubleBookingPrevented is emitted when the authoritative gate rejects a
// submission that an advisory client-side check let through.
type DoubleBookingPrevented struct {
	ListingID listings.ListingID `json:"listing_id"`
	CheckIn   time.Time          `json:"check_in"`
	CheckOut  time.Time          `json:"check_out"`
	Kinds     []ConflictKind     `json:"kinds"`
	At        time.Time          `json:"at"`
}

func (e DoubleBookingPrevented) EventName() string     { return "availability.double_booking_prevented" }
func (e DoubleBookingPrevented) AggregateID() string   { return string(e.ListingID) }
func (e DoubleBookingPrevented) OccurredAt() time.Time { return e.At }
