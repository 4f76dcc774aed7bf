package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/middleware"
	"github.com/Marga-Ghale/sanchari-backend/internal/models"
)

type SessionHandler struct {
	sessions SessionCreator
	notifier SessionNotifier
}

// Create starts a session and returns its token.
func (h *SessionHandler) Create(c *gin.Context) {
	sess, token, err := h.sessions.Create()
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Msgf("✅ [Session] Created session %s", sess.ID())
	c.JSON(http.StatusCreated, models.SessionTokenResponse{SessionID: sess.ID(), Token: token})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess := middleware.GetSession(c)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}

func (h *SessionHandler) SetRole(c *gin.Context) {
	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	if err := sess.SetRole(req.Role); err != nil {
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}

func (h *SessionHandler) SetTab(c *gin.Context) {
	var req models.SetTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	if err := sess.SetActiveTab(req.Tab); err != nil {
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}

func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	if err := sess.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		log.Warn().Str("session", sess.ID()).Msg("⚠️ [Session] Login failed")
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}

func (h *SessionHandler) UnlockAdmin(c *gin.Context) {
	var req models.UnlockAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := middleware.GetSession(c)
	if err := sess.UnlockAdmin(req.Secret); err != nil {
		log.Warn().Str("session", sess.ID()).Msg("⚠️ [Session] Admin unlock failed")
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}

func (h *SessionHandler) Logout(c *gin.Context) {
	sess := middleware.GetSession(c)
	if err := sess.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	notify(h.notifier, sess)
	c.JSON(http.StatusOK, toSessionResponse(sess.State()))
}
