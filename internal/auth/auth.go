// Package auth реализует сессионную аутентификацию: регистрацию, вход по
// паролю, выход и определение текущего пользователя по cookie-токену.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Totarae/ShortLink/internal/model"
	"github.com/Totarae/ShortLink/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "session_id"

// UserStore описывает операции с пользователями, нужные аутентификации.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type Auth struct {
	Users      UserStore
	Sessions   session.Store
	SessionTTL time.Duration
	Logger     *zap.Logger
}

func New(users UserStore, sessions session.Store, ttl time.Duration, logger *zap.Logger) *Auth {
	return &Auth{
		Users:      users,
		Sessions:   sessions,
		SessionTTL: ttl,
		Logger:     logger,
	}
}

// Register создаёт пользователя с bcrypt-хэшем пароля.
func (a *Auth) Register(ctx context.Context, email, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return a.Users.CreateUser(ctx, email, string(hash))
}

// Login проверяет учётные данные и создаёт сессию.
// Неизвестный email и неверный пароль дают одну и ту же ошибку,
// чтобы по ответу нельзя было перебирать зарегистрированные адреса.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	user, err := a.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", model.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := a.Sessions.Set(ctx, token, user.ID, a.SessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Logout удаляет сессию. Отсутствующий токен не считается ошибкой.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.Sessions.Delete(ctx, token)
}

// CurrentUser определяет пользователя по токену сессии.
// Отсутствующий, истёкший или осиротевший токен означает "аноним" (nil, nil).
func (a *Auth) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := a.Sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	user, err := a.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Сессия пережила пользователя
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// RequireUser возвращает пользователя или ErrUnauthenticated, если его нет.
func (a *Auth) RequireUser(ctx context.Context, token string) (*model.User, error) {
	user, err := a.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}
	return user, nil
}

// ReadToken извлекает токен сессии из cookie запроса.
func ReadToken(r *http.Request) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// WriteCookie выставляет сессионную cookie с временем жизни сессии.
func (a *Auth) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(a.SessionTTL.Seconds()),
	})
}

// ClearCookie сбрасывает сессионную cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
