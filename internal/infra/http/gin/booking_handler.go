package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	bookingapp "lendaround/internal/app/handlers/booking"
	"lendaround/internal/domain/shared/daterange"
)

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// Create submits a booking request. A calendar collision is not an error:
// the handler answers 409 with the structured rejection so the client can
// render the conflicting ranges and the suggested check-out.
func (h BookingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := daterange.ParseDate(req.CheckIn)
	if err != nil {
		respondError(c, err)
		return
	}
	checkOut, err := daterange.ParseDate(req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ListingID:       req.ListingID,
		RenterID:        actor.ID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	if !result.Accepted() {
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := bookingapp.ConfirmBookingCommand{ActorID: actor.ID, BookingID: c.Param("id")}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.ConfirmBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) Cancel(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := bookingapp.CancelBookingCommand{ActorID: actor.ID, BookingID: c.Param("id"), Reason: req.Reason}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) Complete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := bookingapp.CompleteBookingCommand{ActorID: actor.ID, BookingID: c.Param("id")}
	h.transition(c, func() (*dto.Booking, error) {
		return commands.Dispatch[bookingapp.CompleteBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	})
}

func (h BookingHandler) transition(c *gin.Context, dispatch func() (*dto.Booking, error)) {
	result, err := dispatch()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
