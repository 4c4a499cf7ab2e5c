package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	"lendaround/internal/app/locks"
	"lendaround/internal/app/middleware"
	"lendaround/internal/app/outbox"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainlistings "lendaround/internal/domain/listings"
)

const (
	addBlackoutKey    = "availability.blackout.add"
	removeBlackoutKey = "availability.blackout.remove"
)

// AddBlackoutCommand declares an owner blackout over an inclusive date range.
type AddBlackoutCommand struct {
	ActorID   string
	ListingID string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (c AddBlackoutCommand) Key() string { return addBlackoutKey }

func (c AddBlackoutCommand) Validate() error {
	switch {
	case c.ActorID == "":
		return fmt.Errorf("%w: actor id", middleware.ErrMissingField)
	case c.ListingID == "":
		return fmt.Errorf("%w: listing id", middleware.ErrMissingField)
	}
	return nil
}

type AddBlackoutHandler struct {
	Locks  *locks.Keyed
	Outbox outbox.Outbox
	Logger *slog.Logger
}

// Handle serializes per listing: the overlap check and the insert share the
// listing's critical section so two concurrent owners cannot both pass the
// check against a registry missing the other's period.
func (h *AddBlackoutHandler) Handle(ctx context.Context, cmd AddBlackoutCommand) (*dto.BlackoutPeriod, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if err := listing.AuthorizeOwner(domainlistings.OwnerID(cmd.ActorID)); err != nil {
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
	period, err := schedule.AddBlackout(domainavailability.BlackoutID(uuid.NewString()), cmd.StartDate, cmd.EndDate, cmd.Reason, time.Now())
	if err != nil {
		return nil, err
	}
	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		return nil, err
	}

	pending := schedule.PendingEvents()
	schedule.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("blackout added", "listing_id", cmd.ListingID, "blackout_id", period.ID, "start", period.StartDate, "end", period.EndDate)
	}

	result := dto.MapBlackoutPeriod(period)
	return &result, nil
}

var _ commands.Handler[AddBlackoutCommand, *dto.BlackoutPeriod] = (*AddBlackoutHandler)(nil)

// RemoveBlackoutCommand deletes a blackout period by id.
type RemoveBlackoutCommand struct {
	ActorID    string
	ListingID  string
	BlackoutID string
}

func (c RemoveBlackoutCommand) Key() string { return removeBlackoutKey }

func (c RemoveBlackoutCommand) Validate() error {
	switch {
	case c.ActorID == "":
		return fmt.Errorf("%w: actor id", middleware.ErrMissingField)
	case c.ListingID == "":
		return fmt.Errorf("%w: listing id", middleware.ErrMissingField)
	case c.BlackoutID == "":
		return fmt.Errorf("%w: blackout id", middleware.ErrMissingField)
	}
	return nil
}

type RemoveBlackoutHandler struct {
	Outbox outbox.Outbox
	Logger *slog.Logger
}

func (h *RemoveBlackoutHandler) Handle(ctx context.Context, cmd RemoveBlackoutCommand) (any, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if err := listing.AuthorizeOwner(domainlistings.OwnerID(cmd.ActorID)); err != nil {
		return nil, err
	}

	schedule, err := unit.Schedules().Schedule(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if err := schedule.RemoveBlackout(domainavailability.BlackoutID(cmd.BlackoutID), time.Now()); err != nil {
		return nil, err
	}
	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		return nil, err
	}

	pending := schedule.PendingEvents()
	schedule.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("blackout removed", "listing_id", cmd.ListingID, "blackout_id", cmd.BlackoutID)
	}
	return nil, nil
}

var _ commands.Handler[RemoveBlackoutCommand, any] = (*RemoveBlackoutHandler)(nil)

var (
	_ middleware.SelfValidating = AddBlackoutCommand{}
	_ middleware.SelfValidating = RemoveBlackoutCommand{}
)
