package http

import (
	"net/http"

	"github.com/RyanGano/skull-king/internal/http/handlers"
	"github.com/RyanGano/skull-king/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires the game API. Route shapes mirror what the web
// client already calls; getid must be registered before the :id wildcard
// would swallow it.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler) {
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Skull King Api")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	games := r.Group("/games")
	{
		games.POST("", h.CreateGame)
		games.GET("/getid", h.GetSingleGameID)
		games.GET("/:id", h.GetGame)
		games.PUT("/:id/players", h.UpsertPlayer)
		games.PUT("/:id/players/reorder", h.ReorderPlayers)
		games.DELETE("/:id/players/:playerId", h.RemovePlayer)
		games.GET("/:id/start", h.StartGame)
		games.GET("/:id/movenext", h.MoveToNextPhase)
		games.GET("/:id/moveprevious", h.MoveToPreviousPhase)
		games.GET("/:id/setbid", h.SetBid)
		games.GET("/:id/setscore", h.SetScore)
	}
}
