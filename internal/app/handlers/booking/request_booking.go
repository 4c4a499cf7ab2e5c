package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	"lendaround/internal/app/locks"
	"lendaround/internal/app/middleware"
	"lendaround/internal/app/outbox"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
	domainevents "lendaround/internal/domain/shared/events"
)

const requestBookingKey = "booking.request"

// RequestBookingCommand submits a renter's date range for a listing.
type RequestBookingCommand struct {
	CommandID       string
	ListingID       string
	RenterID        string
	CheckIn         time.Time
	CheckOut        time.Time
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) Validate() error {
	switch {
	case c.CommandID == "":
		return fmt.Errorf("%w: command id", middleware.ErrMissingField)
	case c.ListingID == "":
		return fmt.Errorf("%w: listing id", middleware.ErrMissingField)
	case c.RenterID == "":
		return fmt.Errorf("%w: renter id", middleware.ErrMissingField)
	}
	return nil
}

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

// RequestBookingResult carries either the created booking or the structured
// rejection. Conflicts are values, not errors.
type RequestBookingResult struct {
	BookingID string               `json:"booking_id,omitempty"`
	Booking   *dto.Booking         `json:"booking,omitempty"`
	Rejection *dto.RangeValidation `json:"rejection,omitempty"`
}

func (r *RequestBookingResult) Accepted() bool { return r != nil && r.Rejection == nil }

type RequestBookingHandler struct {
	Locks  *locks.Keyed
	Outbox outbox.Outbox
	Logger *slog.Logger
}

// Handle is the authoritative gate: it holds the listing's critical section
// across validate+insert so two overlapping submissions cannot both observe a
// ledger without the other's booking. The HTTP validate endpoint answers the
// same question out of band, but only this path decides.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	if h.Locks != nil {
		h.Locks.Lock(cmd.ListingID)
		defer h.Locks.Unlock(cmd.ListingID)
	}

	schedule, err := unit.Schedules().Schedule(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	stays, err := unit.Bookings().OccupyingStays(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resolver := domainavailability.Resolver{Schedule: schedule, Stays: stays}
	verdict := resolver.ValidateRange(cmd.CheckIn, cmd.CheckOut)
	if !verdict.Valid {
		rejection := dto.MapRangeValidation(verdict)
		prevented := domainavailability.DoubleBookingPrevented{
			ListingID: listing.ID,
			CheckIn:   daterange.Day(cmd.CheckIn),
			CheckOut:  daterange.Day(cmd.CheckOut),
			Kinds:     verdict.Conflicts,
			At:        now,
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, []domainevents.DomainEvent{prevented}); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.Info("booking rejected", "listing_id", cmd.ListingID, "renter_id", cmd.RenterID, "conflicts", rejection.Conflicts)
		}
		return &RequestBookingResult{Rejection: &rejection}, nil
	}

	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(cmd.CommandID),
		ListingID:       listing.ID,
		RenterID:        cmd.RenterID,
		OwnerID:         string(listing.Owner),
		Range:           dr,
		TotalPriceCents: int64(dr.Days()) * listing.DailyRateCents,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := b.PendingEvents()
	b.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", b.ID, "listing_id", cmd.ListingID, "range", b.Range.String())
	}

	mapped := dto.MapBooking(b)
	return &RequestBookingResult{BookingID: string(b.ID), Booking: &mapped}, nil
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
var _ middleware.SelfValidating = RequestBookingCommand{}
