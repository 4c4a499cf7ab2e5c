package uow

import (
	"context"

	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
)

// UnitOfWork coordinates the engine's repositories inside one transaction
// boundary. Policy, blackout and booking reads taken from the same unit see
// one snapshot.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Schedules() domainavailability.Repository
	Bookings() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit-of-work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure a transaction boundary.
type TxOptions struct {
	ReadOnly bool
}
