package services

import (
	"strconv"
	"strings"
)

const (
	ProfileStudent = "eleve"

	PriceStudent = 34
	PriceDefault = 70
)

// DefaultPrice is the price in dinars charged for a profile.
func DefaultPrice(profile string) int {
	if strings.EqualFold(strings.TrimSpace(profile), ProfileStudent) {
		return PriceStudent
	}
	return PriceDefault
}

// OrderPrice reads the leading integer of a client-submitted price and falls
// back to the profile default when there is none or it is not positive.
func OrderPrice(profile, raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(raw[:end]); err == nil && n > 0 {
		return n
	}
	return DefaultPrice(profile)
}
