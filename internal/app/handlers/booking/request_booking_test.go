package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendaround/internal/app/locks"
	"lendaround/internal/app/uow"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
	"lendaround/internal/infra/storage/memory"
)

type fixture struct {
	factory  memory.Factory
	listings *memory.ListingRepository
	box      *memory.Outbox
	handler  *RequestBookingHandler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	listingsRepo := memory.NewListingRepository()
	f := memory.Factory{
		ListingsRepo:  listingsRepo,
		SchedulesRepo: memory.NewScheduleRepository(),
		BookingsRepo:  memory.NewBookingRepository(),
	}
	box := memory.NewOutbox()
	return fixture{
		factory:  f,
		listings: listingsRepo,
		box:      box,
		handler:  &RequestBookingHandler{Locks: locks.NewKeyed(), Outbox: box},
	}
}

func (fx fixture) ctx(t *testing.T) context.Context {
	t.Helper()
	unit, err := fx.factory.Begin(context.Background(), uow.TxOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return uow.ContextWithUnitOfWork(context.Background(), unit)
}

func (fx fixture) seedListing(t *testing.T, id, owner string, rateCents int64) {
	t.Helper()
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID: domainlistings.ListingID(id), Owner: domainlistings.OwnerID(owner),
		Title: "Cordless drill", DailyRateCents: rateCents, Now: time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := listing.Activate(time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := fx.listings.Save(context.Background(), listing); err != nil {
		t.Fatal(err)
	}
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRequestBookingSuccess(t *testing.T) {
	fx := newFixture(t)
	fx.seedListing(t, "listing-1", "owner-1", 1500)

	cmd := RequestBookingCommand{
		CommandID: "bk-1", ListingID: "listing-1", RenterID: "renter-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-14"),
	}
	result, err := fx.handler.Handle(fx.ctx(t), cmd)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !result.Accepted() {
		t.Fatalf("expected acceptance, got rejection %+v", result.Rejection)
	}
	if result.Booking == nil || result.Booking.Status != string(domainbooking.StatusPending) {
		t.Fatalf("expected pending booking, got %+v", result.Booking)
	}
	// 4 nights at 1500 cents.
	if result.Booking.TotalPriceCents != 6000 {
		t.Fatalf("TotalPriceCents = %d, want 6000", result.Booking.TotalPriceCents)
	}
}

func TestRequestBookingRejectsOverlap(t *testing.T) {
	fx := newFixture(t)
	fx.seedListing(t, "listing-1", "owner-1", 1000)

	first := RequestBookingCommand{
		CommandID: "bk-1", ListingID: "listing-1", RenterID: "renter-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-15"),
	}
	if result, err := fx.handler.Handle(fx.ctx(t), first); err != nil || !result.Accepted() {
		t.Fatalf("first booking must succeed: result=%+v err=%v", result, err)
	}

	second := RequestBookingCommand{
		CommandID: "bk-2", ListingID: "listing-1", RenterID: "renter-2",
		CheckIn: day(t, "2026-03-12"), CheckOut: day(t, "2026-03-17"),
	}
	result, err := fx.handler.Handle(fx.ctx(t), second)
	if err != nil {
		t.Fatalf("a conflict is a value, not an error: %v", err)
	}
	if result.Accepted() {
		t.Fatalf("expected rejection for overlapping range")
	}
	if result.Rejection.Valid {
		t.Fatalf("rejection must carry valid=false")
	}
	found := false
	for _, kind := range result.Rejection.Conflicts {
		if kind == string(domainavailability.ConflictBooking) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BOOKING_CONFLICT in %v", result.Rejection.Conflicts)
	}
}

func TestRequestBookingBackToBackAccepted(t *testing.T) {
	fx := newFixture(t)
	fx.seedListing(t, "listing-1", "owner-1", 1000)

	first := RequestBookingCommand{
		CommandID: "bk-1", ListingID: "listing-1", RenterID: "renter-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-15"),
	}
	if result, err := fx.handler.Handle(fx.ctx(t), first); err != nil || !result.Accepted() {
		t.Fatalf("first booking must succeed: result=%+v err=%v", result, err)
	}

	// Check-in on the prior check-out day shares only the handover day.
	second := RequestBookingCommand{
		CommandID: "bk-2", ListingID: "listing-1", RenterID: "renter-2",
		CheckIn: day(t, "2026-03-15"), CheckOut: day(t, "2026-03-20"),
	}
	result, err := fx.handler.Handle(fx.ctx(t), second)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Accepted() {
		t.Fatalf("back-to-back booking must be accepted, got %+v", result.Rejection)
	}
}

func TestRequestBookingRejectsOwnListing(t *testing.T) {
	fx := newFixture(t)
	fx.seedListing(t, "listing-1", "owner-1", 1000)

	cmd := RequestBookingCommand{
		CommandID: "bk-1", ListingID: "listing-1", RenterID: "owner-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-14"),
	}
	if _, err := fx.handler.Handle(fx.ctx(t), cmd); !errors.Is(err, domainbooking.ErrSelfBooking) {
		t.Fatalf("expected ErrSelfBooking, got %v", err)
	}
}

func TestRequestBookingUnknownListing(t *testing.T) {
	fx := newFixture(t)
	cmd := RequestBookingCommand{
		CommandID: "bk-1", ListingID: "missing", RenterID: "renter-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-14"),
	}
	if _, err := fx.handler.Handle(fx.ctx(t), cmd); !errors.Is(err, domainlistings.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestTransitions(t *testing.T) {
	fx := newFixture(t)
	fx.seedListing(t, "listing-1", "owner-1", 1000)

	created, err := fx.handler.Handle(fx.ctx(t), RequestBookingCommand{
		CommandID: "bk-1", ListingID: "listing-1", RenterID: "renter-1",
		CheckIn: day(t, "2026-03-10"), CheckOut: day(t, "2026-03-14"),
	})
	if err != nil || !created.Accepted() {
		t.Fatalf("seed booking: result=%+v err=%v", created, err)
	}

	transitions := &TransitionHandler{Outbox: fx.box}

	// A stranger may not confirm.
	if _, err := transitions.HandleConfirm(fx.ctx(t), ConfirmBookingCommand{ActorID: "stranger", BookingID: "bk-1"}); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	confirmed, err := transitions.HandleConfirm(fx.ctx(t), ConfirmBookingCommand{ActorID: "owner-1", BookingID: "bk-1"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != string(domainbooking.StatusConfirmed) {
		t.Fatalf("status = %s, want confirmed", confirmed.Status)
	}

	completed, err := transitions.HandleComplete(fx.ctx(t), CompleteBookingCommand{ActorID: "owner-1", BookingID: "bk-1"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != string(domainbooking.StatusCompleted) {
		t.Fatalf("status = %s, want completed", completed.Status)
	}

	if _, err := transitions.HandleCancel(fx.ctx(t), CancelBookingCommand{ActorID: "renter-1", BookingID: "bk-1"}); !errors.Is(err, domainbooking.ErrInvalidState) {
		t.Fatalf("cancelling a completed booking: expected ErrInvalidState, got %v", err)
	}
}
