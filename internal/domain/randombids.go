package domain

import (
	"crypto/rand"
	"math/big"
)

// randInt returns a random int in [0, n). Draws come from crypto/rand so
// bids are not predictable from a process-wide seed.
func randInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// bidTolerance is how far the roster-wide bid total may land from the deal
// size at each difficulty. Easy games always total exactly the deal size,
// so every table is guaranteed contested tricks; harder games drift.
func bidTolerance(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 0
}

// setRandomBids assigns the current round's bids for every player. The
// total is dealSize plus a jitter inside the difficulty's tolerance band
// (never below zero); each bid is drawn uniformly from the interval that
// keeps the remaining total reachable, so the last player always lands the
// sum exactly on target while staying within [0, dealSize].
func (g *Game) setRandomBids() {
	players := len(g.PlayerRoundInfo)
	size := g.PlayerRoundInfo[0].CurrentRound().MaxBid

	tolerance := bidTolerance(g.Difficulty)
	target := size + randInt(2*tolerance+1) - tolerance
	if target < 0 {
		target = 0
	}
	if target > players*size {
		target = players * size
	}

	remaining := target
	for i, info := range g.PlayerRoundInfo {
		left := players - i - 1
		lo := remaining - left*size
		if lo < 0 {
			lo = 0
		}
		hi := remaining
		if hi > size {
			hi = size
		}
		bid := lo + randInt(hi-lo+1)
		// lo <= bid <= hi <= size, so this cannot fail
		_ = info.CurrentRound().SetBid(bid)
		remaining -= bid
	}
}
