package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// GameID is the 4-character join code that doubles as the storage key.
// The alphabet excludes O and I because they read as 0 and 1 on a phone
// screen; normalization maps them over instead of rejecting them.
type GameID string

const gameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

var gameIDPattern = regexp.MustCompile(`^[A-HJ-NP-Z0-9]{4}$`)

// NewGameID returns a fresh random game id.
func NewGameID() GameID {
	b := make([]byte, 4)
	for i := range b {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(gameIDAlphabet))))
		b[i] = gameIDAlphabet[n.Int64()]
	}
	return GameID(b)
}

// ParseGameID normalizes raw input into a valid game id: uppercase, first
// four characters, O->0 and I->1. Returns ErrBadFormat when the result
// still contains characters outside the id alphabet.
func ParseGameID(raw string) (GameID, error) {
	normalized := strings.ToUpper(raw)
	if len(normalized) > 4 {
		normalized = normalized[:4]
	}
	normalized = strings.ReplaceAll(normalized, "O", "0")
	normalized = strings.ReplaceAll(normalized, "I", "1")

	if !gameIDPattern.MatchString(normalized) {
		return "", ErrBadFormat
	}
	return GameID(normalized), nil
}

func (id GameID) String() string {
	return string(id)
}
