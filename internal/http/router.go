// README: HTTP router registration.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mrx/internal/http/handlers"
	"mrx/internal/http/middleware"
	"mrx/internal/http/ws"
)

func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	teamHandler := handlers.NewTeamHandler(deps.Loop.State())
	stopHandler := handlers.NewStopHandler(deps.Stops)
	replayHandler := handlers.NewReplayHandler(deps.Replays)

	api := r.Group("/api")
	api.POST("/create-team", middleware.Auth(deps.Verifier), teamHandler.Create)
	api.GET("/teams", teamHandler.List)
	api.GET("/stops", stopHandler.List)
	api.GET("/replays", replayHandler.List)

	r.GET("/ws", ws.NewHandler(deps.Loop).Handle)
	r.GET("/replay", ws.NewReplayHandler(deps.Replays).Handle)

	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for _, h := range deps.Health {
			if err := h.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				checks[h.Name] = err.Error()
				continue
			}
			checks[h.Name] = "ok"
		}
		c.JSON(status, gin.H{
			"status":      http.StatusText(status),
			"connections": deps.Loop.State().Connections(),
			"checks":      checks,
		})
	})
	return r
}
