package password

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"math/big"
	"time"
)

const (
	resetTokenBytes = 32

	// DefaultResetTokenTTL is the reset-token lifetime applied by
	// [ResetTokenExpiration].
	DefaultResetTokenTTL = 24 * time.Hour

	// DefaultGeneratedLength is the length of a password produced by
	// [GenerateRandom] when [GenerateOptions.Length] is zero.
	DefaultGeneratedLength = 12

	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// GenerateOptions controls [GenerateRandom]. The zero value of each Include
// field means "enabled"; use the Exclude fields to drop a character class.
type GenerateOptions struct {
	Length int

	ExcludeUppercase bool
	ExcludeLowercase bool
	ExcludeNumbers   bool
	ExcludeSpecial   bool
}

// GenerateResetToken returns a cryptographically secure single-use token:
// 32 random bytes, hex-encoded to exactly 64 lowercase characters.
//
// GenerateResetToken may return an error when the system randomness source fails.
func GenerateResetToken() (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// ResetTokenExpiration returns the expiry for a token issued at now.
func ResetTokenExpiration(now time.Time) time.Time {
	return now.Add(DefaultResetTokenTTL)
}

// GenerateRandom produces a random password drawn from the enabled character
// classes. One character per enabled class is seeded up front, the remaining
// positions are filled from the combined pool, and the buffer is shuffled, so
// the result always contains at least one character from each enabled class
// (as long as the requested length can hold them all).
//
// Edge case: when every class is excluded the pool falls back to
// lowercase+digits.
//
// GenerateRandom may return an error when the system randomness source fails.
func GenerateRandom(opts GenerateOptions) (string, error) {
	length := opts.Length
	if length <= 0 {
		length = DefaultGeneratedLength
	}

	classes := enabledClasses(opts)
	pool := ""
	for _, class := range classes {
		pool += class
	}

	// Seeding instead of repairing: a fix-up pass that overwrites positions
	// after the draw can clobber the only representative of another class,
	// so the class characters go in first and nothing touches them after.
	out := make([]byte, 0, length)
	for _, class := range classes {
		if len(out) == length {
			break
		}
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomChar(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	if err := shuffle(out); err != nil {
		return "", err
	}

	return string(out), nil
}

func enabledClasses(opts GenerateOptions) []string {
	var classes []string
	if !opts.ExcludeUppercase {
		classes = append(classes, upperChars)
	}
	if !opts.ExcludeLowercase {
		classes = append(classes, lowerChars)
	}
	if !opts.ExcludeNumbers {
		classes = append(classes, digitChars)
	}
	if !opts.ExcludeSpecial {
		classes = append(classes, specialChars)
	}
	if len(classes) == 0 {
		classes = []string{lowerChars, digitChars}
	}
	return classes
}

func randomChar(pool string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
	if err != nil {
		return 0, err
	}
	return pool[n.Int64()], nil
}

// shuffle is a Fisher-Yates pass driven by crypto/rand.
func shuffle(s []byte) error {
	for i := len(s) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := int(n.Int64())
		s[i], s[j] = s[j], s[i]
	}
	return nil
}
