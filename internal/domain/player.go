package domain

import "github.com/google/uuid"

// Player identity is the generated id; the name is display-only and may be
// changed by the owning player at any time.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func NewPlayer(name string) Player {
	return Player{ID: uuid.New(), Name: name}
}
