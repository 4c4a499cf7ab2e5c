package booking

import (
	"context"
	"errors"
	"time"

	"lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
	"lendaround/internal/domain/shared/events"
)

var (
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrRenterRequired  = errors.New("booking: renter id required")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrSelfBooking     = errors.New("booking: renter cannot book their own listing")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// IsOccupying is the single canonical predicate deciding whether a booking in
// the given status blocks overlapping date ranges. Every conflict and
// projection computation routes through it; no call site keeps its own list.
func IsOccupying(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	default:
		return false
	}
}

// Booking is a renter's claim on a listing over a half-open date range.
type Booking struct {
	ID              BookingID
	ListingID       listings.ListingID
	RenterID        string
	OwnerID         string
	Range           daterange.DateRange
	Status          Status
	TotalPriceCents int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

// Stay is the projection of a booking the conflict resolver consumes.
type Stay struct {
	BookingID BookingID
	Range     daterange.DateRange
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	// OccupyingStays returns the stays of every booking for the listing whose
	// status satisfies IsOccupying, ordered by check-in date.
	OccupyingStays(ctx context.Context, listingID listings.ListingID) ([]Stay, error)
	ListByRenter(ctx context.Context, renterID string) ([]*Booking, error)
}

type CreateParams struct {
	ID              BookingID
	ListingID       listings.ListingID
	RenterID        string
	OwnerID         string
	Range           daterange.DateRange
	TotalPriceCents int64
	CreatedAt       time.Time
}

func NewBooking(p CreateParams) (*Booking, error) {
	if p.RenterID == "" {
		return nil, ErrRenterRequired
	}
	if p.OwnerID != "" && p.RenterID == p.OwnerID {
		return nil, ErrSelfBooking
	}
	if err := p.Range.Validate(); err != nil {
		return nil, err
	}
	now := p.CreatedAt.UTC()
	b := &Booking{
		ID:              p.ID,
		ListingID:       p.ListingID,
		RenterID:        p.RenterID,
		OwnerID:         p.OwnerID,
		Range:           p.Range,
		Status:          StatusPending,
		TotalPriceCents: p.TotalPriceCents,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingRequested{BookingID: b.ID, ListingID: b.ListingID, RenterID: b.RenterID, Range: b.Range, TotalPriceCents: b.TotalPriceCents, At: now})
	return b, nil
}

// Confirm moves a pending booking to confirmed. Owner action.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Cancel ends a pending or confirmed booking. Terminal.
func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Complete closes a confirmed booking once the rental period has elapsed or
// the return handover is marked. Terminal.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ListingID: b.ListingID, At: b.UpdatedAt})
	return nil
}
