// Package valueobject contains domain value objects for the EthergyX accounts domain.
package valueobject

import (
	"strings"
	"unicode"
)

// NormalizeEmail returns the comparison form of an email address: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmailFormat checks the local@domain.tld shape: a non-empty local part,
// a single @, a dotted domain without empty labels, and no whitespace anywhere.
func IsValidEmailFormat(email string) bool {
	if email == "" || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return false
	}

	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || strings.Contains(domain, "@") {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}
