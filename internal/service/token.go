package service

import (
	"errors"
	"time"

	"github.com/RyanGano/skull-king/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid player token")

// tokenLifetime comfortably outlives a scoring session; the token is a
// session-recovery convenience, not a credential worth rotating.
const tokenLifetime = 7 * 24 * time.Hour

// TokenIssuer mints the player session tokens handed out when a player
// creates or joins a game. The token carries nothing but the game id and
// the player id, so a client that lost its local state can resume its seat
// without retyping anything.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

type playerClaims struct {
	GameID   string `json:"gid"`
	PlayerID string `json:"pid"`
	jwt.RegisteredClaims
}

func (t *TokenIssuer) Issue(gameID domain.GameID, playerID uuid.UUID) (string, error) {
	claims := playerClaims{
		GameID:   gameID.String(),
		PlayerID: playerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates a token and returns the game and player it belongs to.
func (t *TokenIssuer) Parse(tokenString string) (domain.GameID, uuid.UUID, error) {
	var claims playerClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", uuid.Nil, ErrInvalidToken
	}

	gameID, err := domain.ParseGameID(claims.GameID)
	if err != nil {
		return "", uuid.Nil, ErrInvalidToken
	}
	playerID, err := uuid.Parse(claims.PlayerID)
	if err != nil {
		return "", uuid.Nil, ErrInvalidToken
	}
	return gameID, playerID, nil
}
