package domain

import (
	"github.com/google/uuid"
)

// maxRounds is fixed by the rules: a Skull King game is ten deals long.
const maxRounds = 10

// PlayerRounds is one player's ordered round history across a game. Rounds
// are append-only except for RemoveLastRound, and the bid/score operations
// always address the current (last) round.
type PlayerRounds struct {
	ID     uuid.UUID `json:"id"`
	Player Player    `json:"player"`
	Rounds []*Round  `json:"rounds"`
}

func NewPlayerRounds(player Player) *PlayerRounds {
	return &PlayerRounds{ID: uuid.New(), Player: player, Rounds: []*Round{}}
}

// dealSize returns the number of cards dealt in round number n. The deal
// grows by one card per round, capped at 8 when eight players share the
// deck and at 10 otherwise.
func dealSize(roundNumber, playerCount int) int {
	limit := maxRounds
	if playerCount == 8 {
		limit = 8
	}
	if roundNumber > limit {
		return limit
	}
	return roundNumber
}

// AddRound appends the next deal, sized per the deal-size rule.
func (pr *PlayerRounds) AddRound(playerCount int) error {
	if len(pr.Rounds) == maxRounds {
		return ErrInvalidState
	}
	round, err := NewRound(dealSize(len(pr.Rounds)+1, playerCount))
	if err != nil {
		return err
	}
	pr.Rounds = append(pr.Rounds, round)
	return nil
}

// RemoveLastRound undoes the most recent deal. The first round can never be
// removed; undoing past game start is a phase transition, not a round edit.
func (pr *PlayerRounds) RemoveLastRound() error {
	if len(pr.Rounds) <= 1 {
		return ErrInvalidState
	}
	pr.Rounds = pr.Rounds[:len(pr.Rounds)-1]
	return nil
}

// CurrentRound returns the round in play, or nil before the first deal.
func (pr *PlayerRounds) CurrentRound() *Round {
	if len(pr.Rounds) == 0 {
		return nil
	}
	return pr.Rounds[len(pr.Rounds)-1]
}

func (pr *PlayerRounds) SetBid(bid int) error {
	round := pr.CurrentRound()
	if round == nil {
		return ErrInvalidState
	}
	return round.SetBid(bid)
}

func (pr *PlayerRounds) ClearBid() error {
	round := pr.CurrentRound()
	if round == nil {
		return ErrInvalidState
	}
	round.ClearBid()
	return nil
}

// SetScore applies tricks taken before the bonus: the bonus validation
// depends on tricks taken already being in place. A rejected bonus rolls
// the tricks back so the round is untouched on failure.
func (pr *PlayerRounds) SetScore(tricksTaken, bonus int) error {
	round := pr.CurrentRound()
	if round == nil {
		return ErrInvalidState
	}
	prevTricks := round.TricksTaken
	if err := round.SetTricksTaken(tricksTaken); err != nil {
		return err
	}
	if err := round.SetBonus(bonus); err != nil {
		round.TricksTaken = prevTricks
		return err
	}
	return nil
}

func (pr *PlayerRounds) ClearScore() error {
	round := pr.CurrentRound()
	if round == nil {
		return ErrInvalidState
	}
	round.ClearTricksTaken()
	round.ClearBonus()
	return nil
}

// TotalScore sums all rounds; unscored rounds contribute zero.
func (pr *PlayerRounds) TotalScore() int {
	total := 0
	for _, round := range pr.Rounds {
		if round.TricksTaken != nil {
			total += round.Score()
		}
	}
	return total
}
