package generatedremove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
)

// MockService реализует интерфейс generatedremove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) RemoveGenerated(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func TestGeneratedRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		authenticated  bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "успешное удаление",
			id:            "wp1",
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("RemoveGenerated", mock.Anything, "wp1", "u1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"wallpaper deleted"`,
		},
		{
			name:          "чужие или несуществующие обои",
			id:            "wp9",
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("RemoveGenerated", mock.Anything, "wp9", "u1").Return(wallpaper.ErrWallpaperNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"wallpaper not found"`,
		},
		{
			name:           "нет идентичности в контексте",
			id:             "wp1",
			authenticated:  false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
		{
			name:          "ошибка сервиса",
			id:            "wp1",
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("RemoveGenerated", mock.Anything, "wp1", "u1").Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"failed to remove wallpaper"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/generated/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.authenticated {
				ctx = context.WithValue(ctx, middlewarectx.UserID, "u1")
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
