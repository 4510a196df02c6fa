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

// UserRepositoryInterface определяет методы репозитория пользователей.
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// UserRepository реализует UserRepositoryInterface с использованием PostgreSQL.
type UserRepository struct {
	DB *database.DB
}

// NewUserRepository создаёт новый экземпляр UserRepository.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// CreateUser сохраняет нового пользователя.
// Дубликат email транслируется в model.ErrEmailTaken.
func (r *UserRepository) CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error) {
	user := &model.User{Email: email, PasswordHash: passwordHash}

	query := `INSERT INTO users (email, password_hash, created_at)
              VALUES ($1, $2, $3)
              RETURNING id, created_at`

	err := r.DB.Pool.QueryRow(ctx, query, email, passwordHash, time.Now()).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("database insert error: %w", err)
	}
	return user, nil
}

// GetUserByEmail извлекает пользователя по email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	user := &model.User{}
	err := r.DB.Pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}

// GetUserByID извлекает пользователя по идентификатору.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	user := &model.User{}
	err := r.DB.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return user, nil
}
