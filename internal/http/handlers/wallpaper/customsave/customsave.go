// Package customsave реализует HTTP-обработчик сохранения пользовательских обоев.
package customsave

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
	"github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
)

// Request — входные данные сохранения обоев
type Request struct {
	ImageData string                    `json:"imageData" validate:"required"`
	Metadata  *models.WallpaperMetadata `json:"metadata,omitempty"`
}

// Service описывает интерфейс бизнес-логики сохранения пользовательских обоев.
type Service interface {
	SaveCustom(ctx context.Context, email, userID, imageData string, metadata *models.WallpaperMetadata) (*models.CustomWallpaper, error)
}

// Handler управляет HTTP-запросами на сохранение пользовательских обоев.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сохранить пользовательские обои
// @Description Сохраняет base64-изображение с метаданными редактирования. Только для подписчиков.
// @Tags Wallpapers
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Изображение и метаданные"
// @Success 201 {object} map[string]any "Сохранённые обои"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется подписка"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /save-custom [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallpaper.customsave"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	email, okEmail := middlewarectx.EmailFromContext(r.Context())
	userID, okID := middlewarectx.UserIDFromContext(r.Context())
	if !okEmail || !okID {
		log.Error("user identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.SaveCustom(r.Context(), email, userID, req.ImageData, req.Metadata)
	switch {
	case errors.Is(err, wallpaper.ErrPremiumRequired):
		log.Info("save rejected, premium required", slog.String("user_id", userID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("premium subscription required"))
		return
	case errors.Is(err, wallpaper.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to save wallpaper", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to save wallpaper"))
		return
	}

	log.Info("custom wallpaper saved", slog.String("wallpaper_id", result.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":        result.ID,
		"createdAt": result.CreatedAt,
	}))
}
