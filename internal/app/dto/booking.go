package dto

import (
	"time"

	"lendaround/internal/domain/booking"
	"lendaround/internal/domain/shared/daterange"
)

type Booking struct {
	ID              string `json:"id"`
	ListingID       string `json:"listing_id"`
	RenterID        string `json:"renter_id"`
	OwnerID         string `json:"owner_id"`
	CheckIn         string `json:"check_in"`
	CheckOut        string `json:"check_out"`
	Status          string `json:"status"`
	TotalPriceCents int64  `json:"total_price_cents"`
	CreatedAt       string `json:"created_at"`
}

func MapBooking(b *booking.Booking) Booking {
	return Booking{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		RenterID:        b.RenterID,
		OwnerID:         b.OwnerID,
		CheckIn:         daterange.FormatDate(b.Range.CheckIn),
		CheckOut:        daterange.FormatDate(b.Range.CheckOut),
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		CreatedAt:       b.CreatedAt.Format(time.RFC3339),
	}
}
