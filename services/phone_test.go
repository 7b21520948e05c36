package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"20123456":          "+21620123456",
		"20 123 456":        "+21620123456",
		"+216 98-765-432":   "+21698765432",
		"0021655123456":     "0021655123456",
		"(+216) 44.123.456": "+21644123456",
	}
	for raw, want := range valid {
		got, err := NormalizePhone(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestNormalizePhone_Rejects(t *testing.T) {
	for _, raw := range []string{"", "12345678", "30123456", "2012345", "201234567", "+33612345678", "+2162012345"} {
		_, err := NormalizePhone(raw)
		assert.Error(t, err, raw)
	}
}
