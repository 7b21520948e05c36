package services

import (
	"regexp"
	"strings"

	"bace/apperrors"
)

var (
	tunisianPhone = regexp.MustCompile(`^(?:\+216|00216)?[2459]\d{7}$`)
	localPhone    = regexp.MustCompile(`^\d{8}$`)
)

// NormalizePhone keeps digits and '+', prefixes bare 8-digit local numbers
// with +216 and rejects anything that is not a Tunisian mobile number.
func NormalizePhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, raw)

	if localPhone.MatchString(cleaned) {
		cleaned = "+216" + cleaned
	}
	if !tunisianPhone.MatchString(cleaned) {
		return "", apperrors.Validation("Invalid phone number. Use a Tunisian number, e.g. +216 20 123 456")
	}
	return cleaned, nil
}
