package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"lendaround/internal/app/dto"
	availabilityapp "lendaround/internal/app/handlers/availability"
	"lendaround/internal/app/queries"
	"lendaround/internal/domain/shared/daterange"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Calendar answers GET /listings/:id/calendar?from=&to= with the check-in
// dates that would be refused inside the window.
func (h AvailabilityHandler) Calendar(c *gin.Context) {
	listingID := c.Param("id")
	from, err := daterange.ParseDate(c.Query("from"))
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := daterange.ParseDate(c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	query := availabilityapp.GetCalendarQuery{ListingID: listingID, From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.UnavailableDates](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Validate answers GET /listings/:id/availability?check_in=&check_out= with
// the advisory verdict for the range. Always 200; the body says valid or not.
func (h AvailabilityHandler) Validate(c *gin.Context) {
	listingID := c.Param("id")
	checkIn, err := daterange.ParseDate(c.Query("check_in"))
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := daterange.ParseDate(c.Query("check_out"))
	if err != nil {
		respondError(c, err)
		return
	}
	query := availabilityapp.ValidateRangeQuery{ListingID: listingID, CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[availabilityapp.ValidateRangeQuery, dto.RangeValidation](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
