// Package valueobject contains domain value objects for the EthergyX accounts domain.
package valueobject

// StrengthLabel is the discrete, human-readable bucket of a strength score.
type StrengthLabel string

const (
	StrengthVeryWeak  StrengthLabel = "Very Weak"
	StrengthWeak      StrengthLabel = "Weak"
	StrengthFair      StrengthLabel = "Fair"
	StrengthGood      StrengthLabel = "Good"
	StrengthStrong    StrengthLabel = "Strong"
	StrengthExcellent StrengthLabel = "Excellent"
)

// StrengthLabelFor maps a 0-100 strength score to its label.
func StrengthLabelFor(score int) StrengthLabel {
	switch {
	case score < 20:
		return StrengthVeryWeak
	case score < 40:
		return StrengthWeak
	case score < 60:
		return StrengthFair
	case score < 80:
		return StrengthGood
	case score < 95:
		return StrengthStrong
	default:
		return StrengthExcellent
	}
}
