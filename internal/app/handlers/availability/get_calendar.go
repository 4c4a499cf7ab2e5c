package availability

import (
	"context"
	"errors"
	"time"

	"lendaround/internal/app/dto"
	"lendaround/internal/app/queries"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainlistings "lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

var ErrWindowOrder = errors.New("availability: window end must not precede window start")

// GetCalendarQuery asks for the days in [From, To] on which the listing
// cannot start a rental.
type GetCalendarQuery struct {
	ListingID string
	From      time.Time
	To        time.Time
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.Factory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.UnavailableDates, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.UnavailableDates{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.UnavailableDates{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	from := daterange.Day(q.From)
	to := daterange.Day(q.To)
	if to.Before(from) {
		return dto.UnavailableDates{}, ErrWindowOrder
	}

	schedule, resolver, err := scheduleFor(ctx, unit, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.UnavailableDates{}, err
	}
	projector := domainavailability.Projector{Schedule: schedule, Stays: resolver.Stays}
	days := projector.UnavailableCheckInDates(from, to)
	return dto.MapUnavailableDates(q.ListingID, from, to, days), nil
}

var _ queries.Handler[GetCalendarQuery, dto.UnavailableDates] = (*GetCalendarHandler)(nil)
