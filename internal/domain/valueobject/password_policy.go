// Package valueobject contains domain value objects for the EthergyX accounts domain.
package valueobject

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the minimum number of characters a password must have.
	MinPasswordLength = 8
	// MinCharacterClasses is how many of the four character classes a valid password needs.
	MinCharacterClasses = 3

	firstLengthBonusAt  = 12
	secondLengthBonusAt = 16
	lengthBonus         = 0.5
	maxRawScore         = 6.0
)

// Requirement names reported back to users when a password is rejected.
const (
	RequirementMinLength = "at least 8 characters"
	RequirementUppercase = "uppercase letter"
	RequirementLowercase = "lowercase letter"
	RequirementNumber    = "number"
	RequirementSpecial   = "special character"
)

// PasswordRequirements holds the individual complexity checks.
type PasswordRequirements struct {
	MinLength    bool `json:"min_length"`
	HasUppercase bool `json:"has_uppercase"`
	HasLowercase bool `json:"has_lowercase"`
	HasNumber    bool `json:"has_number"`
	HasSpecial   bool `json:"has_special"`
}

// PasswordEvaluation is the transient result of scoring a candidate password.
// It is never persisted.
type PasswordEvaluation struct {
	Requirements  PasswordRequirements
	TypesMet      int
	StrengthScore int
	Valid         bool
}

// EvaluatePassword scores a password against the complexity rules.
// It never fails: any string, including the empty one, yields an evaluation.
func EvaluatePassword(password string) PasswordEvaluation {
	length := utf8.RuneCountInString(password)

	req := PasswordRequirements{MinLength: length >= MinPasswordLength}
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			req.HasUppercase = true
		case r >= 'a' && r <= 'z':
			req.HasLowercase = true
		case r >= '0' && r <= '9':
			req.HasNumber = true
		default:
			req.HasSpecial = true
		}
	}

	typesMet := countTrue(req.HasUppercase, req.HasLowercase, req.HasNumber, req.HasSpecial)

	score := float64(countTrue(req.MinLength) + typesMet)
	if length >= firstLengthBonusAt {
		score += lengthBonus
	}
	if length >= secondLengthBonusAt {
		score += lengthBonus
	}
	strength := math.Floor(math.Min(100, score/maxRawScore*100) + 0.5)

	return PasswordEvaluation{
		Requirements:  req,
		TypesMet:      typesMet,
		StrengthScore: int(strength),
		Valid:         req.MinLength && typesMet >= MinCharacterClasses,
	}
}

// Missing returns the unmet character classes in display order.
func (e PasswordEvaluation) Missing() []string {
	missing := make([]string, 0, 4)
	if !e.Requirements.HasUppercase {
		missing = append(missing, RequirementUppercase)
	}
	if !e.Requirements.HasLowercase {
		missing = append(missing, RequirementLowercase)
	}
	if !e.Requirements.HasNumber {
		missing = append(missing, RequirementNumber)
	}
	if !e.Requirements.HasSpecial {
		missing = append(missing, RequirementSpecial)
	}
	return missing
}

// Unmet lists what keeps the password from being valid. It is empty for valid passwords.
// Missing character classes are listed whenever fewer than three are present, after the
// length item for a short password.
func (e PasswordEvaluation) Unmet() []string {
	if e.Valid {
		return []string{}
	}
	unmet := make([]string, 0, 5)
	if !e.Requirements.MinLength {
		unmet = append(unmet, RequirementMinLength)
	}
	if e.TypesMet < MinCharacterClasses {
		unmet = append(unmet, e.Missing()...)
	}
	return unmet
}

// Message returns the user-facing explanation of why the password is rejected,
// or an empty string when it is valid.
func (e PasswordEvaluation) Message() string {
	switch {
	case e.Valid:
		return ""
	case !e.Requirements.MinLength:
		return "Password must be at least 8 characters long"
	default:
		return "Password must contain at least 3 of the following: uppercase letters, " +
			"lowercase letters, numbers, and special characters. Missing: " +
			strings.Join(e.Missing(), ", ")
	}
}

// Label returns the strength label for the evaluation's score.
func (e PasswordEvaluation) Label() StrengthLabel {
	return StrengthLabelFor(e.StrengthScore)
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
