package handlers

import (
	"net/http"

	"github.com/RyanGano/skull-king/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UpsertPlayer adds a new player to the lobby or, when the body carries an
// id, renames the existing player. The original service overloads one
// route for both, and the client depends on that.
func (h *Handler) UpsertPlayer(c *gin.Context) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.BindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.ID != "" {
		playerID, err := uuid.Parse(req.ID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad player id"})
			return
		}
		_, _, err = h.Games.RenamePlayer(c.Request.Context(), c.Param("id"), playerID, req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": playerID.String(), "name": req.Name})
		return
	}

	game, _, player, err := h.Games.AddPlayer(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"id": player.ID.String(), "name": player.Name}
	if token, err := h.Tokens.Issue(game.ID, player.ID); err == nil {
		resp["playerToken"] = token
	} else {
		logger.Warn("failed to issue player token", "game", game.ID, "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

// RemovePlayer drops a player from the lobby (controlling player only).
func (h *Handler) RemovePlayer(c *gin.Context) {
	actorID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}
	targetID, err := uuid.Parse(c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad player id"})
		return
	}

	game, hash, err := h.Games.RemovePlayer(c.Request.Context(), c.Param("id"), actorID, targetID, c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// ReorderPlayers applies a new seating order (controlling player only).
func (h *Handler) ReorderPlayers(c *gin.Context) {
	var req struct {
		PlayerOrder []string `json:"playerOrder"`
		PlayerID    string   `json:"playerId"`
		KnownHash   string   `json:"knownHash"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	actorID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}

	order := make([]uuid.UUID, 0, len(req.PlayerOrder))
	for _, raw := range req.PlayerOrder {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad player id in order"})
			return
		}
		order = append(order, id)
	}

	game, hash, err := h.Games.SetPlayerOrder(c.Request.Context(), c.Param("id"), actorID, order, req.KnownHash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}
