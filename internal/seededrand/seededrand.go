// Package seededrand derives a deterministic math/rand source from a
// SHA-256 digest of stable inputs, per spec.md §4.4/§9 ("Deterministic
// randomness"): the Panel Coordinator's auto-assign step must be
// repeatable given the same event/round/panel/candidate state, which
// math/rand's default global source cannot guarantee across runs.
//
// Grounded on the original implementation's
// `random.Random(int(hashlib.sha256(seed_material).hexdigest()[:16], 16))`
// idiom, translated to Go's math/rand.New(rand.NewSource(...)).
package seededrand

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"math/rand"
)

// New builds a *rand.Rand deterministically seeded from material — the
// same material always yields the same sequence of draws.
func New(material string) *rand.Rand {
	sum := sha256.Sum256([]byte(material))
	hexDigest := hex.EncodeToString(sum[:])
	seedInt := new(big.Int)
	seedInt.SetString(hexDigest[:16], 16)
	return rand.New(rand.NewSource(seedInt.Int64()))
}
