// Package suggest реализует HTTP-обработчик подсказок промптов для генерации обоев.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
)

// Request — входные данные подсказок; basePrompt опционален.
type Request struct {
	BasePrompt string `json:"basePrompt,omitempty"`
}

// Service описывает интерфейс бизнес-логики подсказок промптов.
type Service interface {
	Suggest(ctx context.Context, email, basePrompt string) ([]string, error)
}

// Handler управляет HTTP-запросами на подсказки промптов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить подсказки промптов
// @Description Возвращает пять промптов по интересу пользователя. Только для подписчиков.
// @Tags Wallpapers
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request false "Базовый интерес"
// @Success 200 {object} map[string]any "Список подсказок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется подписка"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /suggest-prompts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallpaper.suggest"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Тело опционально: пустой запрос даёт общие подсказки.
	var req Request
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	email, ok := middlewarectx.EmailFromContext(r.Context())
	if !ok {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	suggestions, err := h.service.Suggest(r.Context(), email, req.BasePrompt)
	switch {
	case errors.Is(err, wallpaper.ErrPremiumRequired):
		log.Info("suggestions rejected, premium required", slog.String("email", email))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("premium subscription required"))
		return
	case errors.Is(err, wallpaper.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to suggest prompts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to suggest prompts"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"suggestions": suggestions,
	}))
}
