package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	"lendaround/internal/app/outbox"
	"lendaround/internal/app/uow"
	domainbooking "lendaround/internal/domain/booking"
)

const (
	confirmBookingKey  = "booking.confirm"
	cancelBookingKey   = "booking.cancel"
	completeBookingKey = "booking.complete"
)

var ErrNotParticipant = errors.New("booking: actor is not a party to this booking")

// ConfirmBookingCommand is the owner accepting a pending request.
type ConfirmBookingCommand struct {
	ActorID   string
	BookingID string
}

func (c ConfirmBookingCommand) Key() string { return confirmBookingKey }

// CancelBookingCommand ends a pending or confirmed booking; either party may
// cancel.
type CancelBookingCommand struct {
	ActorID   string
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

// CompleteBookingCommand closes a confirmed booking after the return
// handover is marked.
type CompleteBookingCommand struct {
	ActorID   string
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

// TransitionHandler advances the booking state machine. Which statuses count
// as occupying the calendar is decided by booking.IsOccupying alone; this
// handler only moves bookings between states.
type TransitionHandler struct {
	Outbox outbox.Outbox
	Logger *slog.Logger
}

func (h *TransitionHandler) HandleConfirm(ctx context.Context, cmd ConfirmBookingCommand) (*dto.Booking, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		if b.OwnerID != cmd.ActorID {
			return ErrNotParticipant
		}
		return b.Confirm(now)
	})
}

func (h *TransitionHandler) HandleCancel(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		if b.OwnerID != cmd.ActorID && b.RenterID != cmd.ActorID {
			return ErrNotParticipant
		}
		return b.Cancel(cmd.Reason, now)
	})
}

func (h *TransitionHandler) HandleComplete(ctx context.Context, cmd CompleteBookingCommand) (*dto.Booking, error) {
	return h.transition(ctx, cmd.BookingID, func(b *domainbooking.Booking, now time.Time) error {
		if b.OwnerID != cmd.ActorID && b.RenterID != cmd.ActorID {
			return ErrNotParticipant
		}
		return b.Complete(now)
	})
}

func (h *TransitionHandler) transition(ctx context.Context, bookingID string, apply func(*domainbooking.Booking, time.Time) error) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(bookingID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := apply(b, now); err != nil {
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
		h.Logger.Info("booking transitioned", "booking_id", b.ID, "status", b.Status)
	}
	mapped := dto.MapBooking(b)
	return &mapped, nil
}

// Typed adapters so each command key registers its own handler on the bus.

type ConfirmBookingHandler struct{ *TransitionHandler }

func (h ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*dto.Booking, error) {
	return h.HandleConfirm(ctx, cmd)
}

type CancelBookingHandler struct{ *TransitionHandler }

func (h CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	return h.HandleCancel(ctx, cmd)
}

type CompleteBookingHandler struct{ *TransitionHandler }

func (h CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*dto.Booking, error) {
	return h.HandleComplete(ctx, cmd)
}

var _ commands.Handler[ConfirmBookingCommand, *dto.Booking] = ConfirmBookingHandler{}
var _ commands.Handler[CancelBookingCommand, *dto.Booking] = CancelBookingHandler{}
var _ commands.Handler[CompleteBookingCommand, *dto.Booking] = CompleteBookingHandler{}
