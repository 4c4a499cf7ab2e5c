package mongo

import (
	"context"

	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
)

// Factory builds unit-of-work instances over a mongo database. Writes rely
// on per-aggregate optimistic versioning instead of multi-document
// transactions; the per-listing critical section in the application layer
// closes the validate-then-insert window.
type Factory struct {
	Client *Client
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &Unit{
		listings:  NewListingRepository(f.Client.DB),
		schedules: NewScheduleRepository(f.Client.DB),
		bookings:  NewBookingRepository(f.Client.DB),
	}, nil
}

type Unit struct {
	listings  *ListingRepository
	schedules *ScheduleRepository
	bookings  *BookingRepository
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
