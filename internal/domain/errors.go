package domain

import "errors"

// Sentinel errors raised by the game aggregate. Handlers match these with
// errors.Is and map them to HTTP statuses.
var (
	ErrBadFormat       = errors.New("could not normalize game id")
	ErrValidation      = errors.New("validation failed")
	ErrDuplicatePlayer = errors.New("player already in game")
	ErrRosterFull      = errors.New("game cannot have more than 8 players")
	ErrProtectedPlayer = errors.New("cannot remove or displace the first player")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidState    = errors.New("operation not allowed in the current game state")
)
