package util_test

import (
	"strings"
	"testing"

	"github.com/Totarae/ShortLink/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Тест формата генерируемого кода
func TestGenerateCode_Format(t *testing.T) {
	code, err := util.GenerateCode()
	require.NoError(t, err)

	assert.Len(t, code, 8) // 6 байт -> 8 символов base64url
	assert.Equal(t, strings.ToLower(code), code)
	assert.NotContains(t, code, "=")
	assert.NotContains(t, code, "/")
	assert.NotContains(t, code, "+")
}

// Тест уникальности: на выборке кодов не должно быть повторов
func TestGenerateCode_Distinct(t *testing.T) {
	const n = 1000
	seen := make(map[string]bool, n)

	for i := 0; i < n; i++ {
		code, err := util.GenerateCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code: %s", code)
		seen[code] = true
	}
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "https://example.com", util.EnsureScheme("example.com"))
	assert.Equal(t, "http://example.com", util.EnsureScheme("http://example.com"))
	assert.Equal(t, "https://example.com", util.EnsureScheme("https://example.com"))
}
