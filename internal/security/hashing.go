package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher is the one-way hash contract for session secrets.
//
// Hash fails only on catastrophic internal failure, never for well-formed
// input. Verify returns false (and never an error) for malformed or
// mismatched hashes so callers cannot distinguish "bad hash" from "wrong
// secret". NeedsRehash reports whether a stored hash was produced with
// parameters weaker than current policy, enabling lazy upgrade on the next
// successful verification.
type SecretHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
	NeedsRehash(hashed string) bool
}

// BcryptHasher hashes session secrets with bcrypt. Each Hash call salts
// independently, so two hashes of the same input differ while both verify.
// Callers must not log or persist plaintext secrets.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher returns a BcryptHasher with the given cost (4-31).
// Out-of-range costs are clamped; cost 12 is a reasonable production default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash produces a salted bcrypt hash of plain, suitable for storage.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", errors.Join(ErrHash, err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hashed. Constant-time; false for any
// malformed hash.
func (h *BcryptHasher) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// NeedsRehash reports whether hashed was produced with a cost below the
// hasher's current cost. Malformed hashes report true so they get replaced
// on the next successful verification.
func (h *BcryptHasher) NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true
	}
	return cost < h.Cost
}
