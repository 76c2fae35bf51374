package http

import (
	"context"
	"net/http"

	"github.com/BradMoyetones/chat-backend-go/internal/adapters/signal"
	"github.com/BradMoyetones/chat-backend-go/internal/app/orch"
	"github.com/BradMoyetones/chat-backend-go/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientTokenMiddleware gives every browser a stable client token,
// kept in the session cookie and exposed on the gin context for logs.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get("ct").(string)
		if token == "" {
			token = uuid.NewString()
			s.Set("ct", token)
			_ = s.Save()
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ChatSessions", store))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(ClientTokenMiddleware())
	api.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, o.Rooms.List())
	})

	// Surface for the external CRUD service: its persistence writes
	// arrive here and fan out to the affected connections.
	events := r.Group("/internal/events")
	events.POST("/message", handleMessageEvent(o))
	events.POST("/message-read", handleMessageReadEvent(o))
	events.POST("/contact", handleContactEvent(o))
	events.POST("/membership-refresh", handleMembershipRefresh(o))

	return r
}
