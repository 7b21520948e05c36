package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderPrice(t *testing.T) {
	cases := []struct {
		profile, raw string
		want         int
	}{
		{"eleve", "", 34},
		{"Eleve", "abc", 34},
		{"etudiant", "", 70},
		{"parent", "0", 70},
		{"eleve", "50", 50},
		{"eleve", " 45 TND", 45},
		{"eleve", "-5", 34},
		{"", "12.5", 12},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OrderPrice(tc.profile, tc.raw), "%s/%q", tc.profile, tc.raw)
	}
}
