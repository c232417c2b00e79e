package password

import "strings"

// Strength is the result of [ValidateStrength]. Valid is true only when the
// feedback list is empty: all four character classes present and length >= 8.
type Strength struct {
	Valid    bool
	Score    int
	Feedback []string
}

// StrengthOptions toggles optional rules in [ValidateStrength].
type StrengthOptions struct {
	// CheckCommonPatterns appends feedback when the password contains a
	// well-known weak fragment. It never reduces the score below zero.
	CheckCommonPatterns bool
}

var commonPatterns = []string{
	"password",
	"123",
	"qwerty",
	"abc",
	"letmein",
	"admin",
}

const (
	feedbackLength    = "Password must be at least 8 characters long"
	feedbackUppercase = "Password must contain at least one uppercase letter"
	feedbackLowercase = "Password must contain at least one lowercase letter"
	feedbackNumber    = "Password must contain at least one number"
	feedbackSpecial   = "Password must contain at least one special character"
	feedbackCommon    = "Password contains a common pattern and is easy to guess"
)

// ValidateStrength scores a password on a 0-5 scale.
//
// Length >= 12 contributes 2 points, >= 8 contributes 1, below 8 contributes
// nothing and emits feedback. Each present character class (upper, lower,
// digit, special) contributes 1 point; a missing class emits its specific
// feedback string. The score is clamped to [0, 5].
func ValidateStrength(pw string, opts StrengthOptions) Strength {
	var result Strength

	switch {
	case len(pw) >= 12:
		result.Score += 2
	case len(pw) >= 8:
		result.Score++
	default:
		result.Feedback = append(result.Feedback, feedbackLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range pw {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if hasUpper {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, feedbackUppercase)
	}
	if hasLower {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, feedbackLowercase)
	}
	if hasDigit {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, feedbackNumber)
	}
	if hasSpecial {
		result.Score++
	} else {
		result.Feedback = append(result.Feedback, feedbackSpecial)
	}

	if opts.CheckCommonPatterns {
		lowered := strings.ToLower(pw)
		for _, pattern := range commonPatterns {
			if strings.Contains(lowered, pattern) {
				result.Feedback = append(result.Feedback, feedbackCommon)
				break
			}
		}
	}

	if result.Score > 5 {
		result.Score = 5
	}
	if result.Score < 0 {
		result.Score = 0
	}

	result.Valid = len(result.Feedback) == 0
	return result
}
