package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/Totarae/ShortLink/internal/model"
	"github.com/Totarae/ShortLink/internal/util"
	"go.uber.org/zap"
)

const (
	// retentionWindow — окно хранения неиспользованных ссылок:
	// ссылка старше окна и с нулём переходов подлежит удалению.
	retentionWindow = 5 * 24 * time.Hour

	// generateRetries ограничивает число попыток при коллизии
	// сгенерированного кода. После исчерпания ошибка отдаётся наверх.
	generateRetries = 4
)

type Repository interface {
	SaveLink(ctx context.Context, link *model.Link) error
	GetLinkByCode(ctx context.Context, code string) (*model.Link, error)
	GetLinksByOrigin(ctx context.Context, originalURL string) ([]*model.Link, error)
	GetExpiredLinks(ctx context.Context) ([]*model.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	IncrementClicks(ctx context.Context, code string) error
	UpdateLink(ctx context.Context, code string, userID int64, originalURL string, alias *string, expiresAt *time.Time) error
	DeleteLink(ctx context.Context, code string, userID int64) error
	DeleteUnused(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}

type ShortenerService struct {
	Repo    Repository
	Logger  *zap.Logger
	BaseURL string
	now     func() time.Time
}

func NewShortenerService(repo Repository, logger *zap.Logger, baseURL string) *ShortenerService {
	return &ShortenerService{
		Repo:    repo,
		Logger:  logger,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
	}
}

// NormalizeURL приводит присланный URL к каноническому виду.
// Проверка нарочно грубая: непустая строка без пробельных символов,
// содержащая точку. Без схемы подставляется https://.
// Функция чистая: одинаковый вход даёт одинаковый выход.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", model.ErrInvalidURL
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return "", model.ErrInvalidURL
	}
	if !strings.Contains(s, ".") {
		return "", model.ErrInvalidURL
	}

	s = util.EnsureScheme(s)

	parsed, err := url.Parse(s)
	if err != nil || parsed.Host == "" {
		return "", model.ErrInvalidURL
	}
	return parsed.String(), nil
}

// Create создаёт сокращённую ссылку и возвращает её вместе с полным коротким URL.
// Перед созданием синхронно выполняется очистка неиспользованных ссылок.
// Предварительная проверка занятости кода даёт понятную ошибку раньше,
// но источником истины остаётся уникальный индекс в БД.
func (s *ShortenerService) Create(ctx context.Context, userID *int64, req model.ShortenRequest) (*model.Link, string, error) {
	normalized, err := NormalizeURL(req.OriginalURL)
	if err != nil {
		return nil, "", err
	}

	s.Cleanup(ctx)

	link := &model.Link{
		OriginalURL: normalized,
		ExpiresAt:   req.ExpiresAt,
		UserID:      userID,
	}

	if req.CustomAlias != "" {
		alias := req.CustomAlias
		taken, err := s.Repo.CodeExists(ctx, alias)
		if err != nil {
			return nil, "", fmt.Errorf("alias check failed: %w", err)
		}
		if taken {
			return nil, "", model.ErrAliasTaken
		}

		link.ShortCode = alias
		link.CustomAlias = &alias
		if err := s.Repo.SaveLink(ctx, link); err != nil {
			return nil, "", err
		}
		return link, s.shortURL(alias), nil
	}

	for attempt := 0; attempt < generateRetries; attempt++ {
		code, err := util.GenerateCode()
		if err != nil {
			return nil, "", err
		}

		link.ShortCode = code
		err = s.Repo.SaveLink(ctx, link)
		if err == nil {
			return link, s.shortURL(code), nil
		}
		if !errors.Is(err, model.ErrAliasTaken) {
			return nil, "", err
		}
		s.Logger.Warn("Коллизия сгенерированного кода, повторная попытка",
			zap.String("code", code), zap.Int("attempt", attempt+1))
	}
	return nil, "", fmt.Errorf("short code space exhausted after %d attempts: %w", generateRetries, model.ErrAliasTaken)
}

// Update изменяет ссылку владельца. Новый alias переносит short_code.
// Для чужой или несуществующей ссылки возвращается model.ErrLinkNotFound,
// не раскрывая, какой из двух случаев наступил.
func (s *ShortenerService) Update(ctx context.Context, userID int64, code string, req model.ShortenRequest) error {
	normalized, err := NormalizeURL(req.OriginalURL)
	if err != nil {
		return err
	}

	var alias *string
	if req.CustomAlias != "" {
		alias = &req.CustomAlias
	}
	return s.Repo.UpdateLink(ctx, code, userID, normalized, alias, req.ExpiresAt)
}

// Delete удаляет ссылку владельца. Семантика ошибок как у Update.
func (s *ShortenerService) Delete(ctx context.Context, userID int64, code string) error {
	return s.Repo.DeleteLink(ctx, code, userID)
}

// Search возвращает все ссылки с указанным оригинальным URL.
func (s *ShortenerService) Search(ctx context.Context, originalURL string) ([]*model.Link, error) {
	links, err := s.Repo.GetLinksByOrigin(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, model.ErrLinkNotFound
	}
	return links, nil
}

// Stats возвращает запись ссылки по коду, включая счётчик переходов.
func (s *ShortenerService) Stats(ctx context.Context, code string) (*model.Link, error) {
	return s.Repo.GetLinkByCode(ctx, code)
}

// Expired возвращает список истекших ссылок.
func (s *ShortenerService) Expired(ctx context.Context) ([]*model.Link, error) {
	return s.Repo.GetExpiredLinks(ctx)
}

// Cleanup удаляет ссылки старше окна хранения с нулём переходов.
// Очистка — фоновая гигиена: её ошибки логируются и не отдаются клиенту.
func (s *ShortenerService) Cleanup(ctx context.Context) {
	cutoff := s.now().Add(-retentionWindow)
	deleted, err := s.Repo.DeleteUnused(ctx, cutoff)
	if err != nil {
		s.Logger.Warn("Очистка неиспользованных ссылок не удалась", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.Logger.Info("Удалены неиспользованные ссылки", zap.Int64("count", deleted))
	}
}

// CleanupAsync запускает очистку в фоне, не задерживая ответ клиенту.
func (s *ShortenerService) CleanupAsync() {
	go s.Cleanup(context.Background())
}

// Ping проверяет доступность хранилища.
func (s *ShortenerService) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

func (s *ShortenerService) shortURL(code string) string {
	return s.BaseURL + "/" + code
}
