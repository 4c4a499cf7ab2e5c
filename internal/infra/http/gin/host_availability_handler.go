package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"lendaround/internal/app/commands"
	"lendaround/internal/app/dto"
	availabilityapp "lendaround/internal/app/handlers/availability"
	"lendaround/internal/domain/shared/daterange"
)

type HostAvailabilityHandler struct {
	Commands commands.Bus
}

type replaceRulesRequest struct {
	Weekdays []int `json:"weekdays"`
}

type addBlackoutRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// ReplaceRules swaps the listing's check-in weekday whitelist. An empty or
// absent list reopens every weekday.
func (h HostAvailabilityHandler) ReplaceRules(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req replaceRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := availabilityapp.ReplaceRulesCommand{
		ActorID:   actor.ID,
		ListingID: c.Param("id"),
		Weekdays:  req.Weekdays,
	}
	result, err := commands.Dispatch[availabilityapp.ReplaceRulesCommand, *dto.CheckInRules](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HostAvailabilityHandler) AddBlackout(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req addBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := daterange.ParseDate(req.StartDate)
	if err != nil {
		respondError(c, err)
		return
	}
	end, err := daterange.ParseDate(req.EndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	cmd := availabilityapp.AddBlackoutCommand{
		ActorID:   actor.ID,
		ListingID: c.Param("id"),
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[availabilityapp.AddBlackoutCommand, *dto.BlackoutPeriod](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h HostAvailabilityHandler) RemoveBlackout(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	cmd := availabilityapp.RemoveBlackoutCommand{
		ActorID:    actor.ID,
		ListingID:  c.Param("id"),
		BlackoutID: c.Param("blackoutID"),
	}
	if _, err := commands.Dispatch[availabilityapp.RemoveBlackoutCommand, any](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ HostAvailabilityHTTP = HostAvailabilityHandler{}
