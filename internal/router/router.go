package router

import (
	"github.com/Totarae/ShortLink/internal/handlers"
	"github.com/Totarae/ShortLink/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(middleware.GzipMiddleware)            // Gzip-сжатие

	r.Get("/", handler.Root)
	r.Get("/ping", handler.Ping)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Get("/me", handler.Me)

	r.Route("/links", func(r chi.Router) {
		r.Post("/shorten", handler.CreateLink)
		r.Get("/search", handler.Search)
		r.Get("/expired", handler.Expired)
		r.Get("/{code}/stats", handler.Stats)
		r.Delete("/{code}", handler.DeleteLink)
		r.Put("/{code}", handler.UpdateLink)
	})

	// Резолв кода регистрируется последним, чтобы не перехватывать
	// служебные маршруты
	r.Get("/{code}", handler.Redirect)

	return r
}
