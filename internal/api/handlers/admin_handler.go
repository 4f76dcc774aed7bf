package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
)

// AdminHandler serves the admin view. Every route sits behind
// middleware.RequireAdmin.
type AdminHandler struct {
	adminService   service.AdminService
	eventService   service.EventService
	minutesService service.MinutesService
}

func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.adminService.Stats())
}

func (h *AdminHandler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Msgf("✅ [Admin] Created event %s (%s)", event.ID, event.Status)
	c.JSON(http.StatusCreated, event)
}

func (h *AdminHandler) UpdateEventStatus(c *gin.Context) {
	var req models.UpdateEventStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.eventService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *AdminHandler) RegisterMember(c *gin.Context) {
	var req models.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.adminService.RegisterMember(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.ToMemberResponse(*member))
}

// GenerateMinutes always answers 200 once the event exists; a failed
// generation is reported through the fallback flag.
func (h *AdminHandler) GenerateMinutes(c *gin.Context) {
	var req models.GenerateMinutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.minutesService.GenerateMinutes(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ListMinutes(c *gin.Context) {
	moms, err := h.minutesService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, moms)
}

func (h *AdminHandler) GenerateAnnouncement(c *gin.Context) {
	resp, err := h.minutesService.GenerateAnnouncement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
