package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint is a deterministic digest of the full game state, used for
// optimistic concurrency and the client's "no changes" polling
// short-circuit. It is serialize-then-digest rather than a language hash:
// the value must stay stable across process restarts because it is cached
// externally, and it must cover every observable field.
//
// The canonical form is the aggregate's JSON encoding; struct fields
// marshal in declaration order, so identical state always produces
// identical bytes.
func (g *Game) Fingerprint() string {
	canonical, err := json.Marshal(g)
	if err != nil {
		// The aggregate is plain data; marshalling cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:16])
}
