package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/middleware"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/registration"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
}

func (h *RegistrationHandler) Pending(c *gin.Context) {
	sess := middleware.GetSession(c)
	c.JSON(http.StatusOK, toPendingResponse(h.registrationService.State(sess)))
}

// RequestJoin parks an event for confirmation. A new request replaces the
// previous one.
func (h *RegistrationHandler) RequestJoin(c *gin.Context) {
	var req models.RequestJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	if err := h.registrationService.RequestJoin(sess, req.EventID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPendingResponse(h.registrationService.State(sess)))
}

func (h *RegistrationHandler) Cancel(c *gin.Context) {
	sess := middleware.GetSession(c)
	h.registrationService.Cancel(sess)
	c.JSON(http.StatusOK, toPendingResponse(h.registrationService.State(sess)))
}

// Confirm writes the pending registration. On a failed write the request
// stays pending so it can be retried.
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	var req models.ConfirmJoinRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess := middleware.GetSession(c)
	reg, err := h.registrationService.Confirm(c.Request.Context(), sess, registration.Details{
		AttendingFamilyIDs: req.AttendingFamilyIDs,
		SpecialRequests:    req.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Msgf("🎟️ [Registration] %s joined %s", reg.MemberID, reg.EventID)
	c.JSON(http.StatusCreated, reg)
}
