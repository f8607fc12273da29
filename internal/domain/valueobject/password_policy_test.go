package valueobject

import (
	"reflect"
	"strings"
	"testing"
)

func TestEvaluatePassword(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		expectedReqs  PasswordRequirements
		expectedTypes int
		expectedScore int
		expectedValid bool
	}{
		{
			name:          "empty password",
			password:      "",
			expectedReqs:  PasswordRequirements{},
			expectedTypes: 0,
			expectedScore: 0,
			expectedValid: false,
		},
		{
			name:     "three classes at minimum length",
			password: "Abcdef12",
			expectedReqs: PasswordRequirements{
				MinLength:    true,
				HasUppercase: true,
				HasLowercase: true,
				HasNumber:    true,
			},
			expectedTypes: 3,
			expectedScore: 67,
			expectedValid: true,
		},
		{
			name:          "only lowercase",
			password:      "abcdefgh",
			expectedReqs:  PasswordRequirements{MinLength: true, HasLowercase: true},
			expectedTypes: 1,
			expectedScore: 33,
			expectedValid: false,
		},
		{
			name:          "short with two classes",
			password:      "short1",
			expectedReqs:  PasswordRequirements{HasLowercase: true, HasNumber: true},
			expectedTypes: 2,
			expectedScore: 33,
			expectedValid: false,
		},
		{
			name:          "short with all classes",
			password:      "Ab1!",
			expectedReqs:  PasswordRequirements{HasUppercase: true, HasLowercase: true, HasNumber: true, HasSpecial: true},
			expectedTypes: 4,
			expectedScore: 67,
			expectedValid: false,
		},
		{
			name:     "twelve characters earns first bonus",
			password: "LongEnough123",
			expectedReqs: PasswordRequirements{
				MinLength:    true,
				HasUppercase: true,
				HasLowercase: true,
				HasNumber:    true,
			},
			expectedTypes: 3,
			expectedScore: 75,
			expectedValid: true,
		},
		{
			name:          "all five requirements",
			password:      "Abcdef1!",
			expectedReqs:  PasswordRequirements{true, true, true, true, true},
			expectedTypes: 4,
			expectedScore: 83,
			expectedValid: true,
		},
		{
			name:          "all five plus first bonus",
			password:      "Abcdefgh1!ab",
			expectedReqs:  PasswordRequirements{true, true, true, true, true},
			expectedTypes: 4,
			expectedScore: 92,
			expectedValid: true,
		},
		{
			name:          "all five plus both bonuses",
			password:      "Abcdefgh1!abcdef",
			expectedReqs:  PasswordRequirements{true, true, true, true, true},
			expectedTypes: 4,
			expectedScore: 100,
			expectedValid: true,
		},
		{
			name:          "long single class stays invalid",
			password:      strings.Repeat("a", 20),
			expectedReqs:  PasswordRequirements{MinLength: true, HasLowercase: true},
			expectedTypes: 1,
			expectedScore: 50,
			expectedValid: false,
		},
		{
			name:          "non ascii letters count as special",
			password:      "héllo wörld",
			expectedReqs:  PasswordRequirements{MinLength: true, HasLowercase: true, HasSpecial: true},
			expectedTypes: 2,
			expectedScore: 50,
			expectedValid: false,
		},
		{
			name:          "length counts characters not bytes",
			password:      "Äbc1éfg",
			expectedReqs:  PasswordRequirements{HasLowercase: true, HasNumber: true, HasSpecial: true},
			expectedTypes: 3,
			expectedScore: 50,
			expectedValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluatePassword(tt.password)

			if result.Requirements != tt.expectedReqs {
				t.Errorf("expected requirements %+v, got %+v", tt.expectedReqs, result.Requirements)
			}
			if result.TypesMet != tt.expectedTypes {
				t.Errorf("expected typesMet %d, got %d", tt.expectedTypes, result.TypesMet)
			}
			if result.StrengthScore != tt.expectedScore {
				t.Errorf("expected strength %d, got %d", tt.expectedScore, result.StrengthScore)
			}
			if result.Valid != tt.expectedValid {
				t.Errorf("expected valid %v, got %v", tt.expectedValid, result.Valid)
			}
		})
	}
}

// TestEvaluatePassword_ValidityRule checks valid == (length >= 8 && typesMet >= 3)
// over a generated set of passwords.
func TestEvaluatePassword_ValidityRule(t *testing.T) {
	alphabets := []string{"A", "b", "7", "#"}

	for mask := 0; mask < 16; mask++ {
		var chars []string
		for i, a := range alphabets {
			if mask&(1<<i) != 0 {
				chars = append(chars, a)
			}
		}
		if len(chars) == 0 {
			continue
		}

		for length := 1; length <= 18; length++ {
			var sb strings.Builder
			for i := 0; i < length; i++ {
				sb.WriteString(chars[i%len(chars)])
			}
			password := sb.String()

			result := EvaluatePassword(password)
			classes := len(chars)
			if length < len(chars) {
				classes = length
			}
			expected := length >= MinPasswordLength && classes >= MinCharacterClasses

			if result.Valid != expected {
				t.Errorf("password %q: expected valid %v, got %v", password, expected, result.Valid)
			}
			if result.StrengthScore < 0 || result.StrengthScore > 100 {
				t.Errorf("password %q: strength %d out of range", password, result.StrengthScore)
			}
		}
	}
}

func TestPasswordEvaluation_Missing(t *testing.T) {
	result := EvaluatePassword("abcdefgh")

	expected := []string{RequirementUppercase, RequirementNumber, RequirementSpecial}
	if !reflect.DeepEqual(result.Missing(), expected) {
		t.Errorf("expected missing %v, got %v", expected, result.Missing())
	}
}

func TestPasswordEvaluation_Unmet(t *testing.T) {
	t.Run("valid password has nothing unmet", func(t *testing.T) {
		if unmet := EvaluatePassword("LongEnough123").Unmet(); len(unmet) != 0 {
			t.Errorf("expected no unmet requirements, got %v", unmet)
		}
	})

	t.Run("short password with enough classes reports length only", func(t *testing.T) {
		unmet := EvaluatePassword("Ab1!").Unmet()
		if !reflect.DeepEqual(unmet, []string{RequirementMinLength}) {
			t.Errorf("expected length requirement, got %v", unmet)
		}
	})

	t.Run("short password also reports missing classes", func(t *testing.T) {
		unmet := EvaluatePassword("short1").Unmet()
		expected := []string{RequirementMinLength, RequirementUppercase, RequirementSpecial}
		if !reflect.DeepEqual(unmet, expected) {
			t.Errorf("expected %v, got %v", expected, unmet)
		}
	})

	t.Run("long password reports missing classes", func(t *testing.T) {
		unmet := EvaluatePassword("abcdefgh1").Unmet()
		expected := []string{RequirementUppercase, RequirementSpecial}
		if !reflect.DeepEqual(unmet, expected) {
			t.Errorf("expected %v, got %v", expected, unmet)
		}
	})
}

func TestPasswordEvaluation_Message(t *testing.T) {
	if msg := EvaluatePassword("Abcdef12").Message(); msg != "" {
		t.Errorf("expected empty message for valid password, got %q", msg)
	}

	if msg := EvaluatePassword("short1").Message(); msg != "Password must be at least 8 characters long" {
		t.Errorf("unexpected message for short password: %q", msg)
	}

	msg := EvaluatePassword("abcdefgh").Message()
	if !strings.HasSuffix(msg, "Missing: uppercase letter, number, special character") {
		t.Errorf("unexpected message for weak password: %q", msg)
	}
}

func TestStrengthLabelFor(t *testing.T) {
	tests := []struct {
		score    int
		expected StrengthLabel
	}{
		{0, StrengthVeryWeak},
		{19, StrengthVeryWeak},
		{20, StrengthWeak},
		{39, StrengthWeak},
		{40, StrengthFair},
		{59, StrengthFair},
		{60, StrengthGood},
		{79, StrengthGood},
		{80, StrengthStrong},
		{94, StrengthStrong},
		{95, StrengthExcellent},
		{100, StrengthExcellent},
	}

	for _, tt := range tests {
		if got := StrengthLabelFor(tt.score); got != tt.expected {
			t.Errorf("score %d: expected %q, got %q", tt.score, tt.expected, got)
		}
	}

	if label := EvaluatePassword("Abcdefgh1!abcdef").Label(); label != StrengthExcellent {
		t.Errorf("expected Excellent for a 16 character password, got %q", label)
	}
}
