package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		assert.NoError(t, err)
		assert.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		seen[code] = true
	}
	// 200 draws from a 900000-code space should essentially never collapse
	// to a handful of values.
	assert.Greater(t, len(seen), 150)
}
