// Package sociallogin реализует HTTP-обработчик входа через социального провайдера.
//
// Личность пользователя утверждается мобильным клиентом, прошедшим вход у
// провайдера; сервер валидирует только границу запроса.
package sociallogin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/wallflow-app/wallflow-backend/internal/http/response"
	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// Request — входные данные для входа через провайдера
type Request struct {
	Email          string `json:"email" validate:"required,email"`
	Provider       string `json:"provider" validate:"required,oneof=google apple facebook"`
	DisplayName    string `json:"displayName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Service описывает интерфейс бизнес-логики социального входа.
type Service interface {
	SocialLogin(ctx context.Context, email string, provider models.Provider, displayName, profilePicture string) (*models.User, string, error)
}

// Handler управляет HTTP-запросами на вход через социального провайдера.
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
// @Summary Войти через социального провайдера
// @Description Создаёт пользователя при первом входе, локальную учётную запись перепривязывает к провайдеру.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email, провайдер и профиль"
// @Success 200 {object} map[string]any "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /social-login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.sociallogin"
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

	user, token, err := h.service.SocialLogin(r.Context(), req.Email, models.Provider(req.Provider), req.DisplayName, req.ProfilePicture)
	if err != nil {
		log.Error("social login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to login"))
		return
	}

	log.Info("social login succeeded",
		slog.String("user_id", user.ID), slog.String("provider", req.Provider))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
