package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/sanchari-backend/internal/api/handlers"
	"github.com/Marga-Ghale/sanchari-backend/internal/api/middleware"
	"github.com/Marga-Ghale/sanchari-backend/internal/config"
	"github.com/Marga-Ghale/sanchari-backend/internal/socket"
)

// NewRouter mounts the HTTP surface.
func NewRouter(cfg *config.Config, health func() gin.H, h *handlers.Handlers, sessions middleware.SessionResolver, ws *socket.Handler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, health())
	})

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/sessions", h.Session.Create)
		api.GET("/ws", ws.HandleWebSocket)

		// Any session, signed in or not
		sess := api.Group("/session")
		sess.Use(middleware.SessionMiddleware(sessions))
		{
			sess.GET("", h.Session.Get)
			sess.PUT("/role", h.Session.SetRole)
			sess.PUT("/tab", h.Session.SetTab)
			sess.POST("/login", h.Session.Login)
			sess.POST("/admin/unlock", h.Session.UnlockAdmin)
			sess.POST("/logout", h.Session.Logout)
		}

		// Authorized view
		authorized := api.Group("")
		authorized.Use(middleware.SessionMiddleware(sessions), middleware.RequireAuthorized())
		{
			authorized.GET("/events", h.Event.Dashboard)

			pending := authorized.Group("/registrations/pending")
			{
				pending.GET("", h.Registration.Pending)
				pending.POST("", h.Registration.RequestJoin)
				pending.DELETE("", h.Registration.Cancel)
				pending.POST("/confirm", h.Registration.Confirm)
			}

			authorized.GET("/profile", h.Profile.Get)
			authorized.PUT("/profile", h.Profile.Update)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.SessionMiddleware(sessions), middleware.RequireAdmin())
		{
			admin.GET("/stats", h.Admin.Stats)
			admin.POST("/members", h.Admin.RegisterMember)
			admin.POST("/events", h.Admin.CreateEvent)
			admin.PATCH("/events/:id/status", h.Admin.UpdateEventStatus)
			admin.POST("/events/:id/minutes", h.Admin.GenerateMinutes)
			admin.POST("/events/:id/announcement", h.Admin.GenerateAnnouncement)
			admin.GET("/minutes", h.Admin.ListMinutes)
		}
	}

	return r
}

// corsConfig allows the listed origins, or every origin without credentials
// when none are listed.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
