package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanihada/Survey-AI-sub001/internal/auth"
	"github.com/nandanihada/Survey-AI-sub001/internal/config"
	"github.com/nandanihada/Survey-AI-sub001/internal/handlers"
	"github.com/nandanihada/Survey-AI-sub001/internal/relay"
	"github.com/nandanihada/Survey-AI-sub001/internal/store"
)

// NewRouter wires the public relay surface and the keyed operator surface.
// Public: /health, /ready, /postback (partners cannot authenticate)
// Operator (X-API-Key): /partners, /shares, /logs/*
func NewRouter(cfg config.Config, st *store.PostgresStore, rl *relay.Relay) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterPostbackRoutes(r, rl)

	opsGroup := r.Group("/")
	opsGroup.Use(auth.APIKeyMiddleware(cfg.APIKeys))

	handlers.RegisterPartnerRoutes(opsGroup, st)
	handlers.RegisterLogRoutes(opsGroup, st)

	return r
}
