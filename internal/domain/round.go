package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Round records one player's bid and outcome for a single deal. MaxBid is
// the deal size and bounds every other numeric field. Bid, TricksTaken and
// Bonus are nil until entered; TricksTaken depends on Bid, and a nonzero
// Bonus additionally requires the bid to have matched exactly.
//
// Mutation goes through the setters so the dependency rules hold; the
// fields stay exported for serialization.
type Round struct {
	ID          uuid.UUID `json:"id"`
	MaxBid      int       `json:"maxBid"`
	Bid         *int      `json:"bid,omitempty"`
	TricksTaken *int      `json:"tricksTaken,omitempty"`
	Bonus       *int      `json:"bonus,omitempty"`
}

func NewRound(maxBid int) (*Round, error) {
	if maxBid < 1 || maxBid > 10 {
		return nil, fmt.Errorf("%w: max bid must be between 1 and 10", ErrValidation)
	}
	return &Round{ID: uuid.New(), MaxBid: maxBid}, nil
}

func (r *Round) SetBid(bid int) error {
	if bid < 0 || bid > r.MaxBid {
		return fmt.Errorf("%w: bid must be between 0 and the max bid", ErrValidation)
	}
	r.Bid = &bid
	return nil
}

// ClearBid also clears tricks taken and bonus: both depend on the bid and
// must not outlive it.
func (r *Round) ClearBid() {
	r.Bid = nil
	r.TricksTaken = nil
	r.Bonus = nil
}

func (r *Round) SetTricksTaken(tricksTaken int) error {
	if r.Bid == nil {
		return fmt.Errorf("%w: cannot set tricks taken without a bid", ErrValidation)
	}
	if tricksTaken < 0 || tricksTaken > r.MaxBid {
		return fmt.Errorf("%w: tricks taken must be between 0 and the max bid", ErrValidation)
	}
	r.TricksTaken = &tricksTaken
	return nil
}

func (r *Round) ClearTricksTaken() {
	r.TricksTaken = nil
}

// SetBonus accepts zero unconditionally; a nonzero bonus is only legal on a
// round whose bid matched the tricks taken exactly, and must be a positive
// multiple of 10.
func (r *Round) SetBonus(bonus int) error {
	if bonus != 0 {
		if r.Bid == nil {
			return fmt.Errorf("%w: cannot set a bonus without a bid", ErrValidation)
		}
		if r.TricksTaken == nil || *r.Bid != *r.TricksTaken {
			return fmt.Errorf("%w: cannot set a bonus without matching bid and tricks taken", ErrValidation)
		}
		if bonus < 0 || bonus%10 != 0 {
			return fmt.Errorf("%w: bonus must be a positive multiple of 10", ErrValidation)
		}
	}
	r.Bonus = &bonus
	return nil
}

func (r *Round) ClearBonus() {
	r.Bonus = nil
}

// Score treats unset fields as zero, so an unscored round contributes
// nothing. A missed nonzero bid costs 10 per trick of error; a missed zero
// bid costs the full deal size times 10. A matched nonzero bid pays 20 per
// trick; a matched zero bid pays the deal size times 10. Bonus only lands
// on matched bids, which the setter already guarantees.
func (r *Round) Score() int {
	bid, tricksTaken, bonus := 0, 0, 0
	if r.Bid != nil {
		bid = *r.Bid
	}
	if r.TricksTaken != nil {
		tricksTaken = *r.TricksTaken
	}
	if r.Bonus != nil {
		bonus = *r.Bonus
	}

	if bid != tricksTaken {
		diff := bid - tricksTaken
		if diff < 0 {
			diff = -diff
		}
		if bid != 0 {
			return -diff * 10
		}
		return -r.MaxBid * 10
	}
	if bid != 0 {
		return tricksTaken*20 + bonus
	}
	return r.MaxBid*10 + bonus
}
