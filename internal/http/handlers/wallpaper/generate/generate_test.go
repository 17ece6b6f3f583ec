package generate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wallflow-app/wallflow-backend/internal/http/middlewarectx"
	"github.com/wallflow-app/wallflow-backend/internal/models"
	"github.com/wallflow-app/wallflow-backend/internal/services/wallpaper"
)

// MockService реализует интерфейс generate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, email, userID, prompt string) (*models.GeneratedWallpaper, error) {
	args := m.Called(ctx, email, userID, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeneratedWallpaper), args.Error(1)
}

func withIdentity(req *http.Request, email, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middlewarectx.Email, email)
	ctx = context.WithValue(ctx, middlewarectx.UserID, userID)
	return req.WithContext(ctx)
}

func TestGenerateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		authenticated  bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "успешная генерация",
			body:          `{"prompt": "sunset over ocean"}`,
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user@example.com", "u1", "sunset over ocean").
					Return(&models.GeneratedWallpaper{
						ID:       "wp1",
						Prompt:   "a detailed sunset over the ocean",
						ImageURL: "https://img.example.com/1",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"imageUrl":"https://img.example.com/1"`,
		},
		{
			name:          "превышен лимит бесплатного тарифа",
			body:          `{"prompt": "very long prompt"}`,
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("Generate", mock.Anything, "user@example.com", "u1", "very long prompt").
					Return(nil, wallpaper.ErrFreeTierExceeded)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"isFreeTierExceeded":true`,
		},
		{
			name:           "пустой промпт",
			body:           `{"prompt": ""}`,
			authenticated:  true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Prompt is a required field`,
		},
		{
			name:           "нет идентичности в контексте",
			body:           `{"prompt": "sunset"}`,
			authenticated:  false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"unauthorized"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/generate-wallpaper", strings.NewReader(tt.body))
			if tt.authenticated {
				req = withIdentity(req, "user@example.com", "u1")
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
