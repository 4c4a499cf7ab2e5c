package availability

import (
	"context"
	"time"

	"lendaround/internal/app/dto"
	"lendaround/internal/app/queries"
	"lendaround/internal/app/uow"
	domainlistings "lendaround/internal/domain/listings"
)

const validateRangeKey = "availability.validate"

// ValidateRangeQuery is the advisory pre-submission check: the same resolver
// the booking gate runs, exposed for UI feedback. Its verdict is not
// authoritative: the gate re-validates inside the listing's critical
// section before anything is persisted.
type ValidateRangeQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
}

func (q ValidateRangeQuery) Key() string { return validateRangeKey }

type ValidateRangeHandler struct {
	UoWFactory uow.Factory
}

func (h *ValidateRangeHandler) Handle(ctx context.Context, q ValidateRangeQuery) (dto.RangeValidation, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return dto.RangeValidation{}, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return dto.RangeValidation{}, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		defer unit.Rollback(ctx)
	}

	_, resolver, err := scheduleFor(ctx, unit, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.RangeValidation{}, err
	}
	return dto.MapRangeValidation(resolver.ValidateRange(q.CheckIn, q.CheckOut)), nil
}

var _ queries.Handler[ValidateRangeQuery, dto.RangeValidation] = (*ValidateRangeHandler)(nil)
