// Package generatedremove реализует HTTP-обработчик удаления сгенерированных обоев.
package generatedremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
)

// Service описывает интерфейс бизнес-логики удаления сгенерированных обоев.
type Service interface {
	RemoveGenerated(ctx context.Context, id, userID string) error
}

// Handler управляет HTTP-запросами на удаление сгенерированных обоев.
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
// @Summary Удалить сгенерированные обои
// @Description Удаляет обои, принадлежащие текущему пользователю.
// @Tags Wallpapers
// @Security BearerAuth
// @Produce  json
// @Param id path string true "Идентификатор обоев"
// @Success 200 {object} map[string]any "Обои удалены"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Обои не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /generated/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallpaper.generatedremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing wallpaper id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.RemoveGenerated(r.Context(), id, userID)
	if errors.Is(err, wallpaper.ErrWallpaperNotFound) {
		log.Info("wallpaper not found", slog.String("wallpaper_id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("wallpaper not found"))
		return
	}
	if err != nil {
		log.Error("failed to remove wallpaper", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove wallpaper"))
		return
	}

	log.Info("wallpaper removed", slog.String("wallpaper_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "wallpaper deleted",
	}))
}
