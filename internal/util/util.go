package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// codeBytes задаёт энтропию генерируемого кода: 6 байт дают ~8 символов base64url.
const codeBytes = 6

// GenerateCode возвращает случайный URL-безопасный короткий код.
// Источник случайности криптографический, чтобы коды нельзя было угадать.
// Код приводится к нижнему регистру: при резолве коды регистронезависимы.
func GenerateCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	code := base64.RawURLEncoding.EncodeToString(buf)
	return strings.ToLower(code), nil
}

// EnsureScheme добавляет https://, если у URL нет схемы http(s).
func EnsureScheme(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
