package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Totarae/ShortLink/internal/database"
	"github.com/Totarae/ShortLink/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LinkRepositoryInterface определяет методы репозитория ссылок.
type LinkRepositoryInterface interface {
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

// LinkRepository реализует LinkRepositoryInterface с использованием PostgreSQL.
type LinkRepository struct {
	DB *database.DB
}

// NewLinkRepository создаёт новый экземпляр LinkRepository.
func NewLinkRepository(db *database.DB) *LinkRepository {
	return &LinkRepository{DB: db}
}

const linkColumns = `id, original_url, short_code, custom_alias, expires_at, user_id, created_at, clicks`

func scanLink(row pgx.Row) (*model.Link, error) {
	link := &model.Link{}
	err := row.Scan(
		&link.ID, &link.OriginalURL, &link.ShortCode, &link.CustomAlias,
		&link.ExpiresAt, &link.UserID, &link.CreatedAt, &link.Clicks,
	)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// SaveLink сохраняет ссылку в базу данных.
// Уникальность short_code гарантирует ограничение в БД: нарушение
// транслируется в model.ErrAliasTaken.
func (r *LinkRepository) SaveLink(ctx context.Context, link *model.Link) error {
	query := `INSERT INTO links (original_url, short_code, custom_alias, expires_at, user_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id, created_at`

	err := r.DB.Pool.QueryRow(ctx, query,
		link.OriginalURL, link.ShortCode, link.CustomAlias, link.ExpiresAt, link.UserID, time.Now(),
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrAliasTaken
		}
		return fmt.Errorf("database insert error: %w", err)
	}
	return nil
}

// GetLinkByCode извлекает ссылку по сокращённому коду.
func (r *LinkRepository) GetLinkByCode(ctx context.Context, code string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`
	link, err := scanLink(r.DB.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLinkNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return link, nil
}

// GetLinksByOrigin возвращает все ссылки с указанным оригинальным URL.
func (r *LinkRepository) GetLinksByOrigin(ctx context.Context, originalURL string) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE original_url = $1`
	rows, err := r.DB.Pool.Query(ctx, query, originalURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query links by origin: %w", err)
	}
	defer rows.Close()

	var results []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, link)
	}
	return results, rows.Err()
}

// GetExpiredLinks возвращает все истекшие ссылки, от недавних к давним.
func (r *LinkRepository) GetExpiredLinks(ctx context.Context) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE expires_at < NOW() ORDER BY expires_at DESC`
	rows, err := r.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired links: %w", err)
	}
	defer rows.Close()

	var results []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, link)
	}
	return results, rows.Err()
}

// CodeExists проверяет занятость сокращённого кода.
func (r *LinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`
	if err := r.DB.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("database query error: %w", err)
	}
	return exists, nil
}

// IncrementClicks атомарно увеличивает счётчик переходов на единицу.
// Инкремент выполняется одним UPDATE на стороне БД, чтобы параллельные
// редиректы одного кода не теряли обновления.
func (r *LinkRepository) IncrementClicks(ctx context.Context, code string) error {
	query := `UPDATE links SET clicks = clicks + 1 WHERE short_code = $1`
	if _, err := r.DB.Pool.Exec(ctx, query, code); err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	return nil
}

// UpdateLink обновляет ссылку, принадлежащую указанному пользователю.
// Проверка владения и само изменение выполняются одним условным UPDATE:
// отсутствие затронутых строк означает "не найдено или чужая ссылка".
// Новый alias переносит за собой и short_code.
func (r *LinkRepository) UpdateLink(ctx context.Context, code string, userID int64, originalURL string, alias *string, expiresAt *time.Time) error {
	query := `UPDATE links
              SET original_url = $1,
                  custom_alias = $2,
                  short_code = COALESCE($2, short_code),
                  expires_at = $3
              WHERE short_code = $4 AND user_id = $5`

	tag, err := r.DB.Pool.Exec(ctx, query, originalURL, alias, expiresAt, code, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrAliasTaken
		}
		return fmt.Errorf("database update error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLinkNotFound
	}
	return nil
}

// DeleteLink удаляет ссылку, принадлежащую указанному пользователю.
// Как и в UpdateLink, "не найдено" и "чужая ссылка" неразличимы.
func (r *LinkRepository) DeleteLink(ctx context.Context, code string, userID int64) error {
	query := `DELETE FROM links WHERE short_code = $1 AND user_id = $2`
	tag, err := r.DB.Pool.Exec(ctx, query, code, userID)
	if err != nil {
		return fmt.Errorf("database delete error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLinkNotFound
	}
	return nil
}

// DeleteUnused удаляет ссылки, созданные раньше cutoff и ни разу не
// использованные (clicks = 0). Владение и expires_at не учитываются.
func (r *LinkRepository) DeleteUnused(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM links WHERE created_at < $1 AND clicks = 0`
	tag, err := r.DB.Pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("database delete error: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping проверяет доступность базы данных.
func (r *LinkRepository) Ping(ctx context.Context) error {
	_, err := r.DB.Pool.Exec(ctx, "SELECT 1")
	return err
}
