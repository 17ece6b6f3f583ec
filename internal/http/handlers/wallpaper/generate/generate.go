// Package generate реализует HTTP-обработчик генерации обоев по текстовому промпту.
package generate

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

// Request — входные данные генерации обоев
type Request struct {
	Prompt string `json:"prompt" validate:"required"`
}

// Service описывает интерфейс бизнес-логики генерации обоев.
type Service interface {
	Generate(ctx context.Context, email, userID, prompt string) (*models.GeneratedWallpaper, error)
}

// Handler управляет HTTP-запросами на генерацию обоев.
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
// @Summary Сгенерировать обои по промпту
// @Description Улучшает промпт генеративной моделью, строит ссылку рендера и сохраняет документ.
// @Tags Wallpapers
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body Request true "Промпт"
// @Success 200 {object} map[string]any "Сгенерированные обои"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Превышен лимит бесплатного тарифа"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /generate-wallpaper [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wallpaper.generate"
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
		w.WriteHeader(http.StatusUnprocessableEntity)
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

	result, err := h.service.Generate(r.Context(), email, userID, req.Prompt)
	switch {
	case errors.Is(err, wallpaper.ErrFreeTierExceeded):
		log.Info("generation rejected, free tier limit", slog.String("user_id", userID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "free tier prompt limit exceeded",
			Data:   map[string]any{"isFreeTierExceeded": true},
		})
		return
	case errors.Is(err, wallpaper.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to generate wallpaper", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to generate wallpaper"))
		return
	}

	log.Info("wallpaper generated", slog.String("wallpaper_id", result.ID))
	render.JSON(w, r, response.OKWithData(result))
}
