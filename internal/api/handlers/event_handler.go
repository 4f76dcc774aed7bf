package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/middleware"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

// Dashboard lists published events with their remaining slots.
func (h *EventHandler) Dashboard(c *gin.Context) {
	sess := middleware.GetSession(c)
	if member, ok := sess.CurrentMember(); ok {
		c.JSON(http.StatusOK, h.eventService.Dashboard(&member))
		return
	}
	c.JSON(http.StatusOK, h.eventService.Dashboard(nil))
}
