package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
)

// ListingRepository is an in-memory listing store for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrListingNotFound
	}
	return listing, nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = listing
	return nil
}

// ScheduleRepository keeps availability schedules in memory, lazily creating
// the open-policy schedule a listing starts with.
type ScheduleRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainavailability.Schedule
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{
		items: make(map[domainlistings.ListingID]*domainavailability.Schedule),
	}
}

func (r *ScheduleRepository) Schedule(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.items[id]; ok {
		return s, nil
	}
	s := domainavailability.NewSchedule(id)
	r.items[id] = s
	return s, nil
}

func (r *ScheduleRepository) Save(ctx context.Context, schedule *domainavailability.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule.Version++
	r.items[schedule.ListingID] = schedule
	return nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

// OccupyingStays filters through the canonical predicate and orders stays by
// check-in date.
func (r *BookingRepository) OccupyingStays(ctx context.Context, listingID domainlistings.ListingID) ([]domainbooking.Stay, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stays []domainbooking.Stay
	for _, b := range r.items {
		if b.ListingID != listingID || !domainbooking.IsOccupying(b.Status) {
			continue
		}
		stays = append(stays, domainbooking.Stay{BookingID: b.ID, Range: b.Range})
	}
	sort.Slice(stays, func(i, j int) bool {
		return stays[i].Range.CheckIn.Before(stays[j].Range.CheckIn)
	})
	return stays, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.RenterID == renterID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
