package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Totarae/ShortLink/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token-1", 42, time.Hour))

	userID, err := store.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := session.NewMemoryStore()

	_, err := store.Get(context.Background(), "unknown")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

// Истёкший токен должен считаться отсутствующим, даже если запись ещё в карте
func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short-lived", 7, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(ctx, "short-lived")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

// Удаление отсутствующего токена не является ошибкой
func TestMemoryStore_DeleteIdempotent(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", 1, time.Hour))
	require.NoError(t, store.Delete(ctx, "token"))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

// Конкурентный доступ не должен приводить к гонкам (go test -race)
func TestMemoryStore_Concurrent(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", i)
			_ = store.Set(ctx, token, int64(i), time.Hour)
			_, _ = store.Get(ctx, token)
			_ = store.Delete(ctx, token)
		}(i)
	}
	wg.Wait()
}
