package main

import (
	"context"
	"net/http"
	"time"

	"github.com/Totarae/ShortLink/internal/auth"
	"github.com/Totarae/ShortLink/internal/config"
	"github.com/Totarae/ShortLink/internal/database"
	"github.com/Totarae/ShortLink/internal/handlers"
	"github.com/Totarae/ShortLink/internal/migrations"
	"github.com/Totarae/ShortLink/internal/repositories"
	"github.com/Totarae/ShortLink/internal/router"
	"github.com/Totarae/ShortLink/internal/service"
	"github.com/Totarae/ShortLink/internal/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg := config.NewConfig()

	ctx := context.Background()

	db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("Ошибка подключения к БД: ", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatal("Ошибка миграции БД: ", zap.Error(err))
	}

	sessions := newSessionStore(ctx, cfg, logger)

	userRepo := repositories.NewUserRepository(db)
	linkRepo := repositories.NewLinkRepository(db)

	authGate := auth.New(userRepo, sessions, cfg.SessionTTL, logger)
	shortener := service.NewShortenerService(linkRepo, logger, cfg.BaseURL)

	// Очистка неиспользованных ссылок при старте
	shortener.Cleanup(ctx)

	handler := handlers.NewHandler(shortener, authGate, logger)
	r := router.NewRouter(handler, logger)

	logger.Info("Сервер запущен на ", zap.String("address", cfg.ServerAddress))
	if cfg.EnableHTTPS {
		err = http.ListenAndServeTLS(cfg.ServerAddress, cfg.TLSCertPath, cfg.TLSKeyPath, r)
	} else {
		err = http.ListenAndServe(cfg.ServerAddress, r)
	}
	if err != nil {
		logger.Fatal("Ошибка при запуске сервера: ", zap.Error(err))
	}
}

// newSessionStore выбирает хранилище сессий один раз при старте:
// Redis, если он настроен и отвечает, иначе in-memory запасной вариант.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) session.Store {
	if cfg.SessionStore == "memory" {
		logger.Info("Сессии будут храниться в памяти процесса")
		return session.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis недоступен, сессии будут храниться в памяти", zap.Error(err))
		return session.NewMemoryStore()
	}

	logger.Info("Сессии будут храниться в Redis", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client)
}
