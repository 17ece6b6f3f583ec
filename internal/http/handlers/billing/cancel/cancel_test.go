package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wallflow-app/wallflow-backend/internal/services/billing"
)

// MockService реализует интерфейс cancel.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CancelSubscription(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func TestCancelHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная отмена",
			body: `{"email": "premium@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("CancelSubscription", mock.Anything, "premium@example.com").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"subscription cancellation requested"`,
		},
		{
			name: "нет активной подписки",
			body: `{"email": "free@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("CancelSubscription", mock.Anything, "free@example.com").
					Return(billing.ErrNoActiveSubscription)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"no active subscription found"`,
		},
		{
			name: "ошибка провайдера",
			body: `{"email": "premium@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("CancelSubscription", mock.Anything, "premium@example.com").
					Return(errors.New("stripe unavailable"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"failed to cancel subscription"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/cancel-subscription", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
