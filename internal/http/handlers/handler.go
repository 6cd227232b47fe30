package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RyanGano/skull-king/internal/domain"
	"github.com/RyanGano/skull-king/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	Games  *service.GameService
	Tokens *service.TokenIssuer
}

func NewHandler(games *service.GameService, tokens *service.TokenIssuer) *Handler {
	return &Handler{Games: games, Tokens: tokens}
}

// gameResponse is the wire shape the web client polls for.
func gameResponse(g *domain.Game, hash string) gin.H {
	return gin.H{
		"id":              g.ID.String(),
		"hash":            hash,
		"status":          g.Status,
		"playerRoundInfo": g.PlayerRoundInfo,
		"isRandomBid":     g.IsRandomBid,
		"difficulty":      g.Difficulty,
	}
}

// respondError maps the typed domain/service errors onto transport
// statuses, keeping "refetch and retry" (412) distinct from "fix your
// input" (400) and "not allowed" (401).
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStaleHash):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGameNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGameExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPlayerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBadFormat),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrDuplicatePlayer),
		errors.Is(err, domain.ErrRosterFull),
		errors.Is(err, domain.ErrProtectedPlayer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// actingPlayer resolves the caller's player id from the playerId query
// parameter, or from a bearer session token whose game matches the route.
func (h *Handler) actingPlayer(c *gin.Context) (uuid.UUID, bool) {
	if raw := c.Query("playerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}

	auth := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && h.Tokens != nil {
		tokenGame, playerID, err := h.Tokens.Parse(token)
		if err != nil {
			return uuid.Nil, false
		}
		routeGame, err := domain.ParseGameID(c.Param("id"))
		if err != nil || tokenGame != routeGame {
			return uuid.Nil, false
		}
		return playerID, true
	}
	return uuid.Nil, false
}
