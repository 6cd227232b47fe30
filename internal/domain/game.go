package domain

import (
	"github.com/google/uuid"
)

// GameStatus values are serialized as numbers; the web client depends on
// the ordering.
type GameStatus int

const (
	StatusAcceptingPlayers GameStatus = iota
	StatusBiddingOpen
	StatusBiddingClosed
	StatusGameOver
)

type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

const (
	minPlayers = 2
	maxPlayers = 8
)

// Game is the aggregate root: the full scorekeeping state machine for one
// table. PlayerRoundInfo index 0 is always the controlling player (the
// founder); phase transitions keep every player's round count in lock-step.
//
// The aggregate is pure in-memory state: no storage, no transport, no
// clocks. Callers load it, invoke one mutator, and persist the result
// together with the new Fingerprint.
type Game struct {
	ID              GameID          `json:"id"`
	Status          GameStatus      `json:"status"`
	PlayerRoundInfo []*PlayerRounds `json:"playerRoundInfo"`
	IsRandomBid     bool            `json:"isRandomBid,omitempty"`
	Difficulty      Difficulty      `json:"difficulty,omitempty"`
}

// NewGame creates a game in AcceptingPlayers with the founder as the sole
// (and permanently first) player.
func NewGame(id GameID, founder Player) *Game {
	return &Game{
		ID:              id,
		Status:          StatusAcceptingPlayers,
		PlayerRoundInfo: []*PlayerRounds{NewPlayerRounds(founder)},
	}
}

// Players returns the roster in play order.
func (g *Game) Players() []Player {
	players := make([]Player, len(g.PlayerRoundInfo))
	for i, info := range g.PlayerRoundInfo {
		players[i] = info.Player
	}
	return players
}

// PlayerRoundsFor locates a player's history by id.
func (g *Game) PlayerRoundsFor(playerID uuid.UUID) (*PlayerRounds, error) {
	for _, info := range g.PlayerRoundInfo {
		if info.Player.ID == playerID {
			return info, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// ControllingPlayer returns the founder.
func (g *Game) ControllingPlayer() Player {
	return g.PlayerRoundInfo[0].Player
}

func (g *Game) AddPlayer(player Player) (*PlayerRounds, error) {
	if g.Status != StatusAcceptingPlayers {
		return nil, ErrInvalidState
	}
	for _, info := range g.PlayerRoundInfo {
		if info.Player.ID == player.ID {
			return nil, ErrDuplicatePlayer
		}
	}
	if len(g.PlayerRoundInfo) == maxPlayers {
		return nil, ErrRosterFull
	}
	info := NewPlayerRounds(player)
	g.PlayerRoundInfo = append(g.PlayerRoundInfo, info)
	return info, nil
}

// RemovePlayer drops a player from the lobby. The founder can never be
// removed, and the roster is frozen once bidding starts (removing a player
// mid-game would break the lock-step round counts).
func (g *Game) RemovePlayer(playerID uuid.UUID) error {
	if g.Status != StatusAcceptingPlayers {
		return ErrInvalidState
	}
	for i, info := range g.PlayerRoundInfo {
		if info.Player.ID != playerID {
			continue
		}
		if i == 0 {
			return ErrProtectedPlayer
		}
		g.PlayerRoundInfo = append(g.PlayerRoundInfo[:i], g.PlayerRoundInfo[i+1:]...)
		return nil
	}
	return ErrPlayerNotFound
}

// RenamePlayer updates a player's display name.
func (g *Game) RenamePlayer(playerID uuid.UUID, name string) error {
	info, err := g.PlayerRoundsFor(playerID)
	if err != nil {
		return err
	}
	info.Player.Name = name
	return nil
}

// SetPlayerOrder reorders the roster in place. The new order must be a
// permutation of exactly the current roster with the founder still first.
func (g *Game) SetPlayerOrder(order []uuid.UUID) error {
	if g.Status != StatusAcceptingPlayers {
		return ErrInvalidState
	}
	if len(order) != len(g.PlayerRoundInfo) {
		return ErrValidation
	}
	if order[0] != g.PlayerRoundInfo[0].Player.ID {
		return ErrProtectedPlayer
	}

	reordered := make([]*PlayerRounds, 0, len(order))
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return ErrValidation
		}
		seen[id] = true
		info, err := g.PlayerRoundsFor(id)
		if err != nil {
			return err
		}
		reordered = append(reordered, info)
	}
	g.PlayerRoundInfo = reordered
	return nil
}

// StartGame moves the lobby into the first round of bidding. In random-bid
// mode a two-player table gets a synthetic third player first so the
// bid-splitting math has three participants; nobody keeps score for the
// ghost. Random-bid games have round 1 bids applied immediately and open
// at BiddingClosed.
func (g *Game) StartGame(isRandomBid bool, difficulty Difficulty) error {
	if g.Status != StatusAcceptingPlayers {
		return ErrInvalidState
	}
	if len(g.PlayerRoundInfo) < minPlayers {
		return ErrInvalidState
	}

	if isRandomBid && len(g.PlayerRoundInfo) == 2 {
		g.PlayerRoundInfo = append(g.PlayerRoundInfo, NewPlayerRounds(NewPlayer("Ghost player")))
	}

	g.IsRandomBid = isRandomBid
	if isRandomBid {
		g.Difficulty = difficulty
	}

	for _, info := range g.PlayerRoundInfo {
		if err := info.AddRound(len(g.PlayerRoundInfo)); err != nil {
			return err
		}
	}
	g.Status = StatusBiddingOpen

	if g.IsRandomBid {
		g.setRandomBids()
		g.Status = StatusBiddingClosed
	}
	return nil
}

// MoveToNextPhase advances the state machine one step.
//
// From BiddingOpen, missing bids default to zero and bidding closes. From
// BiddingClosed, missing score fields default to zero; the game ends after
// round 10 closes, otherwise every player gets the next deal and bidding
// reopens. Random-bid games never linger in BiddingOpen: new-round bids
// are generated and the phase advances straight to BiddingClosed again.
func (g *Game) MoveToNextPhase() error {
	switch g.Status {
	case StatusAcceptingPlayers, StatusGameOver:
		return ErrInvalidState

	case StatusBiddingOpen:
		for _, info := range g.PlayerRoundInfo {
			round := info.CurrentRound()
			if round.Bid == nil {
				if err := round.SetBid(0); err != nil {
					return err
				}
			}
		}
		g.Status = StatusBiddingClosed
		return nil

	case StatusBiddingClosed:
		for _, info := range g.PlayerRoundInfo {
			round := info.CurrentRound()
			if round.TricksTaken == nil {
				if err := round.SetTricksTaken(0); err != nil {
					return err
				}
			}
			if round.Bonus == nil {
				if err := round.SetBonus(0); err != nil {
					return err
				}
			}
		}

		if len(g.PlayerRoundInfo[0].Rounds) == maxRounds {
			g.Status = StatusGameOver
			return nil
		}

		for _, info := range g.PlayerRoundInfo {
			if err := info.AddRound(len(g.PlayerRoundInfo)); err != nil {
				return err
			}
		}
		g.Status = StatusBiddingOpen

		if g.IsRandomBid {
			g.setRandomBids()
			g.Status = StatusBiddingClosed
		}
		return nil
	}
	return ErrInvalidState
}

// MoveToPreviousPhase walks the state machine backwards: reopening final
// scores from GameOver, clearing the current round's scores from
// BiddingClosed, or removing the current round entirely from BiddingOpen.
// Round 1's BiddingOpen is the floor; there is nothing before game start.
func (g *Game) MoveToPreviousPhase() error {
	switch g.Status {
	case StatusGameOver:
		g.Status = StatusBiddingClosed
		return nil

	case StatusBiddingClosed:
		for _, info := range g.PlayerRoundInfo {
			if err := info.ClearScore(); err != nil {
				return err
			}
		}
		g.Status = StatusBiddingOpen
		return nil

	case StatusBiddingOpen:
		if len(g.PlayerRoundInfo[0].Rounds) <= 1 {
			return ErrInvalidState
		}
		for _, info := range g.PlayerRoundInfo {
			if err := info.RemoveLastRound(); err != nil {
				return err
			}
		}
		g.Status = StatusBiddingClosed
		return nil
	}
	return ErrInvalidState
}
