package model

import "time"

// Link представляет сокращённую ссылку.
// ShortCode уникален глобально; если задан CustomAlias, он совпадает с ShortCode.
// UserID равен nil для анонимно созданных ссылок: такие ссылки нельзя
// изменить или удалить через пользовательские эндпоинты.
type Link struct {
	ID          int64      `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	CustomAlias *string    `json:"custom_alias,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	UserID      *int64     `json:"user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Clicks      int64      `json:"clicks"`
}

// Expired сообщает, истёк ли срок действия ссылки на момент now.
// Отсутствие ExpiresAt означает "не истекает никогда".
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}
