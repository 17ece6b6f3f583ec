// Package generatedlist реализует HTTP-обработчик списка сгенерированных обоев пользователя.
package generatedlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// Service описывает интерфейс бизнес-логики списка сгенерированных обоев.
type Service interface {
	ListGenerated(ctx context.Context, userID string) ([]*models.GeneratedWallpaper, error)
}

// Handler управляет HTTP-запросами на список сгенерированных обоев.
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
// @Summary Список сгенерированных обоев
// @Description Возвращает до 50 новейших сгенерированных обоев пользователя.
// @Tags Wallpapers
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} map[string]any "Список обоев"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /my-generated [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallpaper.generatedlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	wallpapers, err := h.service.ListGenerated(r.Context(), userID)
	if err != nil {
		log.Error("failed to list wallpapers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list wallpapers"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"wallpapers": wallpapers,
	}))
}
