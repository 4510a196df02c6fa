package service

import (
	"context"
	"strings"

	"github.com/Totarae/ShortLink/internal/model"
	"github.com/Totarae/ShortLink/internal/util"
)

// browserMarkers — подстроки User-Agent, по которым запрос считается
// пришедшим из интерактивного браузера. Список фиксированный, сравнение
// регистронезависимое; классификация влияет только на форму ответа.
var browserMarkers = []string{"chrome", "firefox", "safari", "edge", "opera", "msie"}

// Resolution описывает исход успешного резолва короткого кода.
type Resolution struct {
	TargetURL string
	Browser   bool
}

// Resolve разрешает короткий код в целевой URL.
// Код приводится к нижнему регистру: коды регистронезависимы.
// Исходы: model.ErrLinkNotFound, model.ErrLinkExpired (счётчик не меняется)
// или успешный резолв с атомарным инкрементом счётчика переходов.
func (s *ShortenerService) Resolve(ctx context.Context, code, userAgent string) (*Resolution, error) {
	code = strings.ToLower(code)

	link, err := s.Repo.GetLinkByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.Expired(s.now()) {
		return nil, model.ErrLinkExpired
	}

	if err := s.Repo.IncrementClicks(ctx, code); err != nil {
		return nil, err
	}

	// Нормализация при создании уже гарантирует схему, но хранилище
	// могло быть наполнено мимо сервиса
	target := util.EnsureScheme(strings.TrimSpace(link.OriginalURL))

	return &Resolution{
		TargetURL: target,
		Browser:   IsBrowser(userAgent),
	}, nil
}

// IsBrowser сообщает, похож ли User-Agent на интерактивный браузер.
func IsBrowser(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range browserMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
