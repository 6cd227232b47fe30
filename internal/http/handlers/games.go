package handlers

import (
	"net/http"
	"strconv"

	"github.com/RyanGano/skull-king/internal/domain"
	"github.com/RyanGano/skull-king/internal/http/middleware"
	"github.com/RyanGano/skull-king/internal/logger"

	"github.com/gin-gonic/gin"
)

// CreateGame starts a new game for the founding player. The response
// carries the aggregate, its fingerprint, and a session token for the
// founder.
func (h *Handler) CreateGame(c *gin.Context) {
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := c.BindJSON(&req); err != nil || req.PlayerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerName is required"})
		return
	}

	game, hash, err := h.Games.CreateGame(c.Request.Context(), req.PlayerName)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GamesCreated.Inc()

	resp := gameResponse(game, hash)
	if token, err := h.Tokens.Issue(game.ID, game.ControllingPlayer().ID); err == nil {
		resp["playerToken"] = token
	} else {
		logger.Warn("failed to issue player token", "game", game.ID, "error", err)
	}
	c.JSON(http.StatusCreated, resp)
}

// GetGame returns current game state, or 304 when the caller's knownHash
// still matches.
func (h *Handler) GetGame(c *gin.Context) {
	game, hash, unchanged, err := h.Games.GetGame(c.Request.Context(), c.Param("id"), c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	if unchanged {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// GetSingleGameID returns the join code when exactly one game exists; the
// client uses it to prefill the join box on a fresh install.
func (h *Handler) GetSingleGameID(c *gin.Context) {
	id, ok, err := h.Games.FindSingleGameID(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String()})
}

// StartGame begins round one, optionally in random-bid mode.
func (h *Handler) StartGame(c *gin.Context) {
	actorID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}

	randomBid := false
	if raw := c.Query("randomBidMode"); raw != "" {
		var err error
		if randomBid, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad randomBidMode"})
			return
		}
	}
	difficulty := domain.DifficultyEasy
	if raw := c.Query("gameDifficulty"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < int(domain.DifficultyEasy) || n > int(domain.DifficultyHard) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad gameDifficulty"})
			return
		}
		difficulty = domain.Difficulty(n)
	}

	game, hash, err := h.Games.StartGame(c.Request.Context(), c.Param("id"), actorID, c.Query("knownHash"), randomBid, difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GamesStarted.Inc()
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// MoveToNextPhase closes bidding or finalizes the round's scores.
func (h *Handler) MoveToNextPhase(c *gin.Context) {
	actorID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}
	game, hash, err := h.Games.MoveToNextPhase(c.Request.Context(), c.Param("id"), actorID, c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// MoveToPreviousPhase undoes the most recent phase transition.
func (h *Handler) MoveToPreviousPhase(c *gin.Context) {
	actorID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}
	game, hash, err := h.Games.MoveToPreviousPhase(c.Request.Context(), c.Param("id"), actorID, c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// SetBid records the acting player's bid for the current round.
func (h *Handler) SetBid(c *gin.Context) {
	playerID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}
	bid, err := strconv.Atoi(c.Query("bid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad bid"})
		return
	}
	game, hash, err := h.Games.SetBid(c.Request.Context(), c.Param("id"), playerID, bid, c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}

// SetScore records the acting player's tricks taken and bonus for the
// current round.
func (h *Handler) SetScore(c *gin.Context) {
	playerID, ok := h.actingPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "player id required"})
		return
	}
	tricksTaken, err := strconv.Atoi(c.Query("trickstaken"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad trickstaken"})
		return
	}
	bonus := 0
	if raw := c.Query("bonus"); raw != "" {
		if bonus, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad bonus"})
			return
		}
	}
	game, hash, err := h.Games.SetScore(c.Request.Context(), c.Param("id"), playerID, tricksTaken, bonus, c.Query("knownHash"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse(game, hash))
}
