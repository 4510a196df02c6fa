package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/Totarae/ShortLink/internal/auth"
	"github.com/Totarae/ShortLink/internal/model"
	"github.com/Totarae/ShortLink/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler содержит HTTP-обработчики сервиса.
type Handler struct {
	Shortener *service.ShortenerService
	Auth      *auth.Auth
	Logger    *zap.Logger
}

func NewHandler(shortener *service.ShortenerService, authGate *auth.Auth, logger *zap.Logger) *Handler {
	return &Handler{
		Shortener: shortener,
		Auth:      authGate,
		Logger:    logger,
	}
}

// redirectPage — HTML-заглушка для браузеров: часть из них не доходит по
// голому редиректу из-за предпросмотра ссылок, поэтому отдаём страницу
// с клиентским переходом.
const redirectPage = `<!DOCTYPE html>
<html>
<head><meta http-equiv="refresh" content="0; url=%s"></head>
<body><a href="%s">%s</a></body>
</html>`

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError транслирует доменную ошибку в HTTP-статус и JSON-ответ.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, model.ErrInvalidURL),
		errors.Is(err, model.ErrAliasTaken),
		errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrLinkNotFound), errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrLinkExpired):
		status = http.StatusGone
	default:
		status = http.StatusInternalServerError
		h.Logger.Error("Внутренняя ошибка", zap.Error(err))
	}
	writeJSON(w, status, model.MessageResponse{Message: err.Error()})
}

// Register регистрирует нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, model.MessageResponse{Message: "email and password are required"})
		return
	}

	if _, err := h.Auth.Register(r.Context(), req.Email, req.Password); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "User registered successfully"})
}

// Login аутентифицирует пользователя и выставляет сессионную cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}

	token, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Auth.WriteCookie(w, token)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged in successfully"})
}

// Logout завершает сессию и сбрасывает cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := auth.ReadToken(r)
	if err := h.Auth.Logout(r.Context(), token); err != nil {
		h.Logger.Warn("Не удалось удалить сессию", zap.Error(err))
	}
	h.Auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
}

// Me возвращает данные текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.RequireUser(r.Context(), auth.ReadToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateLink создаёт сокращённую ссылку. Аутентификация необязательна:
// анонимные ссылки создаются без владельца.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}

	var userID *int64
	user, err := h.Auth.CurrentUser(r.Context(), auth.ReadToken(r))
	if err != nil {
		// Сбой определения пользователя не мешает анонимному созданию
		h.Logger.Warn("Не удалось определить пользователя", zap.Error(err))
	} else if user != nil {
		userID = &user.ID
	}

	link, shortURL, err := h.Shortener.Create(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ShortenResponse{
		ShortURL:  shortURL,
		ShortCode: link.ShortCode,
	})
}

// Redirect разрешает короткий код и перенаправляет клиента.
// Браузеры получают HTML со страничным переходом, остальные — 307.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	res, err := h.Shortener.Resolve(r.Context(), code, r.UserAgent())
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Очистка после редиректа не должна задерживать ответ
	h.Shortener.CleanupAsync()

	if res.Browser {
		target := html.EscapeString(res.TargetURL)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, redirectPage, target, target, target)
		return
	}

	w.Header().Set("Location", res.TargetURL)
	w.WriteHeader(http.StatusTemporaryRedirect)
}

// Search возвращает все ссылки с указанным оригинальным URL.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	originalURL := r.URL.Query().Get("original_url")
	if originalURL == "" {
		writeJSON(w, http.StatusBadRequest, model.MessageResponse{Message: "original_url is required"})
		return
	}

	links, err := h.Shortener.Search(r.Context(), originalURL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// Stats возвращает запись ссылки со счётчиком переходов.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	link, err := h.Shortener.Stats(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// DeleteLink удаляет ссылку владельца.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.RequireUser(r.Context(), auth.ReadToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Shortener.Delete(r.Context(), user.ID, chi.URLParam(r, "code")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Link deleted successfully"})
}

// UpdateLink изменяет ссылку владельца.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.RequireUser(r.Context(), auth.ReadToken(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "BadRequest", http.StatusBadRequest)
		return
	}

	if err := h.Shortener.Update(r.Context(), user.ID, chi.URLParam(r, "code"), req); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Link updated successfully"})
}

// Expired возвращает список истекших ссылок.
func (h *Handler) Expired(w http.ResponseWriter, r *http.Request) {
	links, err := h.Shortener.Expired(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if links == nil {
		links = []*model.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

// Root отдаёт приветственное сообщение.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Welcome to the URL shortener service!"})
}

// Ping проверяет доступность хранилища.
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	if err := h.Shortener.Ping(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
