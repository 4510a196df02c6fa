package model

import "time"

// ShortenRequest представляет структуру запроса на сокращение URL.
type ShortenRequest struct {
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// ShortenResponse представляет структуру ответа с сокращённым URL.
type ShortenResponse struct {
	ShortURL  string `json:"short_url"`
	ShortCode string `json:"short_code"`
}

// RegisterRequest представляет структуру запроса на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет структуру запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse представляет простой ответ с сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}
