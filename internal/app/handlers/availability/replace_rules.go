package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	"lendaround/internal/app/middleware"
	"lendaround/internal/app/outbox"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainlistings "lendaround/internal/domain/listings"
)

const replaceRulesKey = "availability.rules.replace"

var ErrInvalidWeekday = errors.New("availability: weekday must be between 0 (Sunday) and 6 (Saturday)")

// ReplaceRulesCommand swaps a listing's entire check-in weekday rule set.
// An empty set reopens the policy to every weekday.
type ReplaceRulesCommand struct {
	ActorID   string
	ListingID string
	Weekdays  []int
}

func (c ReplaceRulesCommand) Key() string { return replaceRulesKey }

func (c ReplaceRulesCommand) Validate() error {
	switch {
	case c.ActorID == "":
		return fmt.Errorf("%w: actor id", middleware.ErrMissingField)
	case c.ListingID == "":
		return fmt.Errorf("%w: listing id", middleware.ErrMissingField)
	}
	return nil
}

type ReplaceRulesHandler struct {
	Outbox outbox.Outbox
	Logger *slog.Logger
}

func (h *ReplaceRulesHandler) Handle(ctx context.Context, cmd ReplaceRulesCommand) (*dto.CheckInRules, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	days := make([]time.Weekday, 0, len(cmd.Weekdays))
	for _, d := range cmd.Weekdays {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidWeekday, d)
		}
		days = append(days, time.Weekday(d))
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
	schedule.ReplaceCheckInRules(days, time.Now())
	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		return nil, err
	}

	pending := schedule.PendingEvents()
	schedule.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("check-in rules replaced", "listing_id", cmd.ListingID, "open", schedule.Policy.IsOpen(), "weekdays", schedule.Policy.Weekdays())
	}

	result := dto.MapCheckInRules(cmd.ListingID, schedule.Policy)
	return &result, nil
}

var _ commands.Handler[ReplaceRulesCommand, *dto.CheckInRules] = (*ReplaceRulesHandler)(nil)
var _ middleware.SelfValidating = ReplaceRulesCommand{}

// scheduleFor loads the availability schedule together with the occupying
// stays that the resolver and projector consume. The listing lookup comes
// first: schedule stores synthesize an open schedule for unknown ids, so a
// read for a listing that does not exist must fail with ErrListingNotFound
// rather than answer as if nothing were booked.
func scheduleFor(ctx context.Context, unit uow.UnitOfWork, listingID domainlistings.ListingID) (*domainavailability.Schedule, domainavailability.Resolver, error) {
	if _, err := unit.Listings().ByID(ctx, listingID); err != nil {
		return nil, domainavailability.Resolver{}, err
	}
	schedule, err := unit.Schedules().Schedule(ctx, listingID)
	if err != nil {
		return nil, domainavailability.Resolver{}, err
	}
	stays, err := unit.Bookings().OccupyingStays(ctx, listingID)
	if err != nil {
		return nil, domainavailability.Resolver{}, err
	}
	return schedule, domainavailability.Resolver{Schedule: schedule, Stays: stays}, nil
}
