package memory

import (
	"context"
	"errors"

	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
)

// Factory wires the in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ListingsRepo  domainlistings.Repository
	SchedulesRepo domainavailability.Repository
	BookingsRepo  domainbooking.Repository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.SchedulesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{listings: f.ListingsRepo, schedules: f.SchedulesRepo, bookings: f.BookingsRepo}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	listings  domainlistings.Repository
	schedules domainavailability.Repository
	bookings  domainbooking.Repository
}

func (u *Unit) Listings() domainlistings.Repository {
	return u.listings
}

func (u *Unit) Schedules() domainavailability.Repository {
	return u.schedules
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
