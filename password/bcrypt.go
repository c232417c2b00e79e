package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost factor used when [Config.Cost] is zero.
	DefaultCost = 12

	minCost = 10
)

// Config defines a public type used by crewauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cost int
}

// Hasher defines a public type used by crewauth APIs.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	cost int
}

// NewHasher creates a [Hasher] with the given bcrypt configuration.
//
// NewHasher may return an error when input validation, dependency calls, or security checks fail.
// NewHasher does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHasher(cfg Config) (*Hasher, error) {
	cost := cfg.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < minCost {
		return nil, errors.New("password cost must be >= 10")
	}
	if cost > bcrypt.MaxCost {
		return nil, errors.New("password cost exceeds bcrypt maximum")
	}

	return &Hasher{cost: cost}, nil
}

// Hash produces a salted bcrypt hash of the given plaintext.
//
// Hash may return an error when input validation, dependency calls, or security checks fail.
// Hash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Hash(plain string) (string, error) {
	// Password processing uses raw string bytes exactly as provided (no Unicode normalization).
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored bcrypt hash. A malformed
// or foreign hash yields false rather than an error.
//
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) Verify(plain, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plain)) == nil
}

// Cost returns the active bcrypt cost factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// NeedsRehash reports whether the stored hash was produced at a lower cost
// than the hasher is configured with, so the caller can re-hash on the next
// successful login.
//
// NeedsRehash may return an error when input validation, dependency calls, or security checks fail.
// NeedsRehash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hasher) NeedsRehash(encodedHash string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, err
	}
	return cost < h.cost, nil
}
