// Package session реализует хранилище сессий: токен -> ID пользователя с TTL.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound возвращается, когда токен отсутствует или его TTL истёк.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store определяет интерфейс хранилища сессий.
// Delete идемпотентен: удаление отсутствующего токена не является ошибкой.
type Store interface {
	Set(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// RedisStore хранит сессии во внешнем Redis с ключами вида session:<token>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore создаёт хранилище сессий поверх клиента Redis.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis value parse: %w", err)
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

type memoryEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore хранит сессии в памяти процесса под мьютексом.
// Используется как запасной вариант, когда Redis недоступен.
// Истёкшие записи считаются отсутствующими и удаляются лениво при чтении.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryStore создаёт пустое in-memory хранилище сессий.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Set(_ context.Context, token string, userID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (int64, error) {
	s.mu.RLock()
	entry, ok := s.data[token]
	s.mu.RUnlock()

	if !ok {
		return 0, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.data, token)
		s.mu.Unlock()
		return 0, ErrNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}
