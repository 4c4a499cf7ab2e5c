package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "lendaround/internal/app/handlers/availability"
	bookingapp "lendaround/internal/app/handlers/booking"
	"lendaround/internal/app/middleware"
	domainavailability "lendaround/internal/domain/availability"
	domainbooking "lendaround/internal/domain/booking"
	domainlistings "lendaround/internal/domain/listings"
	"lendaround/internal/domain/shared/daterange"
)

// respondError maps domain and application errors onto HTTP statuses. Booking
// conflicts never reach this path; they travel as values inside 409 bodies.
func respondError(c *gin.Context, err error) {
	var overlap *domainavailability.OverlapError
	switch {
	case errors.As(err, &overlap):
		c.JSON(http.StatusConflict, gin.H{
			"error":    err.Error(),
			"existing": mapOverlap(overlap),
		})
	case errors.Is(err, domainlistings.ErrListingNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainavailability.ErrBlackoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotOwner),
		errors.Is(err, bookingapp.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrBadDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrBlackoutOrder),
		errors.Is(err, domainbooking.ErrSelfBooking),
		errors.Is(err, availabilityapp.ErrInvalidWeekday),
		errors.Is(err, availabilityapp.ErrWindowOrder),
		errors.Is(err, middleware.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func mapOverlap(e *domainavailability.OverlapError) gin.H {
	return gin.H{
		"id":         string(e.Existing.ID),
		"start_date": daterange.FormatDate(e.Existing.StartDate),
		"end_date":   daterange.FormatDate(e.Existing.EndDate),
	}
}
