package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/middleware"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/service"
)

type ProfileHandler struct {
	profileService service.ProfileService
	notifier       SessionNotifier
}

func (h *ProfileHandler) Get(c *gin.Context) {
	member, err := h.profileService.Get(middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ToMemberResponse(member))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	member, err := h.profileService.Update(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, models.ToMemberResponse(member))
}
