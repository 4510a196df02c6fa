package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/Totarae/ShortLink/internal/auth"
	"github.com/Totarae/ShortLink/internal/model"
	"github.com/Totarae/ShortLink/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUserStore хранит пользователей в памяти для тестов
type fakeUserStore struct {
	nextID int64
	byMail map[string]*model.User
	byID   map[int64]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byMail: make(map[string]*model.User),
		byID:   make(map[int64]*model.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string) (*model.User, error) {
	if _, ok := f.byMail[email]; ok {
		return nil, model.ErrEmailTaken
	}
	f.nextID++
	user := &model.User{
		ID:           f.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.byMail[email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byMail[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func newTestAuth() (*auth.Auth, *fakeUserStore) {
	users := newFakeUserStore()
	return auth.New(users, session.NewMemoryStore(), 24*time.Hour, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	user, err := a.Register(ctx, "user@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.NotEqual(t, "secret", user.PasswordHash) // хэш, не открытый пароль

	token, err := a.Login(ctx, "user@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := a.CurrentUser(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, err := a.Register(ctx, "dup@example.com", "secret")
	require.NoError(t, err)

	_, err = a.Register(ctx, "dup@example.com", "other")
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

// Неизвестный email и неверный пароль дают одинаковую ошибку
func TestLogin_UniformError(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, err := a.Register(ctx, "user@example.com", "secret")
	require.NoError(t, err)

	_, errUnknown := a.Login(ctx, "nobody@example.com", "secret")
	_, errWrongPass := a.Login(ctx, "user@example.com", "wrong")

	assert.ErrorIs(t, errUnknown, model.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, model.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
}

// Каждый вход выдаёт новый непредсказуемый токен
func TestLogin_TokensDistinct(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, err := a.Register(ctx, "user@example.com", "secret")
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		token, err := a.Login(ctx, "user@example.com", "secret")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestCurrentUser_Anonymous(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	// Без токена
	user, err := a.CurrentUser(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, user)

	// С неизвестным токеном
	user, err = a.CurrentUser(ctx, "bogus-token")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestRequireUser_Unauthenticated(t *testing.T) {
	a, _ := newTestAuth()

	_, err := a.RequireUser(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

// После выхода токен сразу перестаёт действовать
func TestLogout_InvalidatesSession(t *testing.T) {
	a, _ := newTestAuth()
	ctx := context.Background()

	_, err := a.Register(ctx, "user@example.com", "secret")
	require.NoError(t, err)

	token, err := a.Login(ctx, "user@example.com", "secret")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, token))

	_, err = a.RequireUser(ctx, token)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	// Повторный выход не является ошибкой
	assert.NoError(t, a.Logout(ctx, token))
}
