package wallpaper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallflow-app/wallflow-backend/internal/models"
	storage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockWallpaperRepository struct {
	mock.Mock
}

func (m *MockWallpaperRepository) SaveGeneratedWallpaper(ctx context.Context, w models.GeneratedWallpaper) (string, error) {
	args := m.Called(ctx, w)
	return args.String(0), args.Error(1)
}

func (m *MockWallpaperRepository) ListGeneratedWallpapers(ctx context.Context, userID string, limit int64) ([]*models.GeneratedWallpaper, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GeneratedWallpaper), args.Error(1)
}

func (m *MockWallpaperRepository) RemoveGeneratedWallpaper(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockWallpaperRepository) SaveCustomWallpaper(ctx context.Context, w models.CustomWallpaper) (string, error) {
	args := m.Called(ctx, w)
	return args.String(0), args.Error(1)
}

func (m *MockWallpaperRepository) ListCustomWallpapers(ctx context.Context, userID string, limit int64) ([]*models.CustomWallpaper, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CustomWallpaper), args.Error(1)
}

func (m *MockWallpaperRepository) RemoveCustomWallpaper(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockPromptAI struct {
	mock.Mock
}

func (m *MockPromptAI) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockPromptAI) Model() string {
	return m.Called().String(0)
}

func (m *MockPromptAI) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockPromptAI) SuggestPrompts(ctx context.Context, basePrompt string) ([]string, error) {
	args := m.Called(ctx, basePrompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPromptAI) RenderImageURL(prompt string, width, height int) string {
	return m.Called(prompt, width, height).String(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(users *MockUserRepository, wallpapers *MockWallpaperRepository, ai *MockPromptAI) *Service {
	return New(users, wallpapers, ai, newNoopLogger())
}

var (
	freeUser    = &models.User{ID: "u1", Email: "free@example.com"}
	premiumUser = &models.User{ID: "u2", Email: "premium@example.com", IsPremium: true}
)

func TestService_Generate(t *testing.T) {
	longPrompt := strings.Repeat("a", freeTierPromptLimit+1)

	tests := []struct {
		name          string
		email         string
		userID        string
		prompt        string
		setupMocks    func(*MockUserRepository, *MockWallpaperRepository, *MockPromptAI)
		check         func(*testing.T, *models.GeneratedWallpaper)
		expectedError error
	}{
		{
			name:   "free user with short prompt, enhancement succeeds",
			email:  "free@example.com",
			userID: "u1",
			prompt: "sunset over ocean",
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()
				ai.On("Enabled").Return(true).Once()
				ai.On("EnhancePrompt", mock.Anything, "sunset over ocean").Return("a detailed sunset over the ocean", nil).Once()
				ai.On("RenderImageURL", "a detailed sunset over the ocean", 1080, 1920).Return("https://img.example.com/1").Once()
				ai.On("Model").Return("gemini-1.5-flash").Once()
				w.On("SaveGeneratedWallpaper", mock.Anything, mock.Anything).Return("wp1", nil).Once()
			},
			check: func(t *testing.T, wp *models.GeneratedWallpaper) {
				assert.Equal(t, "wp1", wp.ID)
				assert.Equal(t, "a detailed sunset over the ocean", wp.Prompt)
				assert.Equal(t, "https://img.example.com/1", wp.ImageURL)
				assert.Equal(t, "gemini-1.5-flash", wp.Meta.Model)
				assert.Equal(t, 1080, wp.Meta.Width)
				assert.Equal(t, 1920, wp.Meta.Height)
			},
		},
		{
			name:   "enhancement failure falls back to raw prompt",
			email:  "free@example.com",
			userID: "u1",
			prompt: "neon city",
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()
				ai.On("Enabled").Return(true).Once()
				ai.On("EnhancePrompt", mock.Anything, "neon city").Return("", errors.New("model timeout")).Once()
				ai.On("RenderImageURL", "neon city", 1080, 1920).Return("https://img.example.com/2").Once()
				ai.On("Model").Return("gemini-1.5-flash").Once()
				w.On("SaveGeneratedWallpaper", mock.Anything, mock.Anything).Return("wp2", nil).Once()
			},
			check: func(t *testing.T, wp *models.GeneratedWallpaper) {
				assert.Equal(t, "neon city", wp.Prompt)
			},
		},
		{
			name:   "disabled model skips enhancement",
			email:  "free@example.com",
			userID: "u1",
			prompt: "forest",
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()
				ai.On("Enabled").Return(false).Once()
				ai.On("RenderImageURL", "forest", 1080, 1920).Return("https://img.example.com/3").Once()
				ai.On("Model").Return("").Once()
				w.On("SaveGeneratedWallpaper", mock.Anything, mock.Anything).Return("wp3", nil).Once()
			},
			check: func(t *testing.T, wp *models.GeneratedWallpaper) {
				assert.Equal(t, "forest", wp.Prompt)
			},
		},
		{
			name:   "free user over prompt limit",
			email:  "free@example.com",
			userID: "u1",
			prompt: longPrompt,
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()
			},
			expectedError: ErrFreeTierExceeded,
		},
		{
			name:   "premium user over free limit is allowed",
			email:  "premium@example.com",
			userID: "u2",
			prompt: longPrompt,
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "premium@example.com").Return(premiumUser, nil).Once()
				ai.On("Enabled").Return(false).Once()
				ai.On("RenderImageURL", longPrompt, 1080, 1920).Return("https://img.example.com/4").Once()
				ai.On("Model").Return("").Once()
				w.On("SaveGeneratedWallpaper", mock.Anything, mock.Anything).Return("wp4", nil).Once()
			},
			check: func(t *testing.T, wp *models.GeneratedWallpaper) {
				assert.Equal(t, "wp4", wp.ID)
			},
		},
		{
			name:   "unknown user",
			email:  "missing@example.com",
			userID: "u9",
			prompt: "anything",
			setupMocks: func(u *MockUserRepository, w *MockWallpaperRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "missing@example.com").Return(nil, storage.ErrUserNotFound).Once()
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			wallpapers := new(MockWallpaperRepository)
			ai := new(MockPromptAI)
			service := newService(users, wallpapers, ai)

			tt.setupMocks(users, wallpapers, ai)

			result, err := service.Generate(context.Background(), tt.email, tt.userID, tt.prompt)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				tt.check(t, result)
			}

			users.AssertExpectations(t)
			wallpapers.AssertExpectations(t)
			ai.AssertExpectations(t)
		})
	}
}

func TestService_Suggest(t *testing.T) {
	modelSuggestions := []string{"p1", "p2", "p3", "p4", "p5"}

	tests := []struct {
		name          string
		email         string
		setupMocks    func(*MockUserRepository, *MockPromptAI)
		expected      []string
		expectedError error
	}{
		{
			name:  "premium user gets model suggestions",
			email: "premium@example.com",
			setupMocks: func(u *MockUserRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "premium@example.com").Return(premiumUser, nil).Once()
				ai.On("Enabled").Return(true).Once()
				ai.On("SuggestPrompts", mock.Anything, "nature").Return(modelSuggestions, nil).Once()
			},
			expected: modelSuggestions,
		},
		{
			name:  "model failure falls back to stock suggestions",
			email: "premium@example.com",
			setupMocks: func(u *MockUserRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "premium@example.com").Return(premiumUser, nil).Once()
				ai.On("Enabled").Return(true).Once()
				ai.On("SuggestPrompts", mock.Anything, "nature").Return(nil, errors.New("unparsable reply")).Once()
			},
			expected: stockSuggestions,
		},
		{
			name:  "disabled model serves stock suggestions",
			email: "premium@example.com",
			setupMocks: func(u *MockUserRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "premium@example.com").Return(premiumUser, nil).Once()
				ai.On("Enabled").Return(false).Once()
			},
			expected: stockSuggestions,
		},
		{
			name:  "free user is rejected",
			email: "free@example.com",
			setupMocks: func(u *MockUserRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()
			},
			expectedError: ErrPremiumRequired,
		},
		{
			name:  "unknown user",
			email: "missing@example.com",
			setupMocks: func(u *MockUserRepository, ai *MockPromptAI) {
				u.On("FindUserByEmail", mock.Anything, "missing@example.com").Return(nil, storage.ErrUserNotFound).Once()
			},
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			ai := new(MockPromptAI)
			service := newService(users, new(MockWallpaperRepository), ai)

			tt.setupMocks(users, ai)

			result, err := service.Suggest(context.Background(), tt.email, "nature")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}

			users.AssertExpectations(t)
			ai.AssertExpectations(t)
		})
	}
}

func TestService_SaveCustom(t *testing.T) {
	metadata := &models.WallpaperMetadata{
		Filters: map[string]float64{"brightness": 1.2},
	}

	t.Run("premium user saves wallpaper", func(t *testing.T) {
		users := new(MockUserRepository)
		wallpapers := new(MockWallpaperRepository)
		service := newService(users, wallpapers, new(MockPromptAI))

		users.On("FindUserByEmail", mock.Anything, "premium@example.com").Return(premiumUser, nil).Once()
		wallpapers.On("SaveCustomWallpaper", mock.Anything, mock.MatchedBy(func(w models.CustomWallpaper) bool {
			return w.UserID == "u2" && w.ImageData == "base64data" && w.Metadata == metadata
		})).Return("cw1", nil).Once()

		result, err := service.SaveCustom(context.Background(), "premium@example.com", "u2", "base64data", metadata)

		require.NoError(t, err)
		assert.Equal(t, "cw1", result.ID)
		assert.False(t, result.CreatedAt.IsZero())

		users.AssertExpectations(t)
		wallpapers.AssertExpectations(t)
	})

	t.Run("free user is rejected", func(t *testing.T) {
		users := new(MockUserRepository)
		wallpapers := new(MockWallpaperRepository)
		service := newService(users, wallpapers, new(MockPromptAI))

		users.On("FindUserByEmail", mock.Anything, "free@example.com").Return(freeUser, nil).Once()

		result, err := service.SaveCustom(context.Background(), "free@example.com", "u1", "base64data", nil)

		assert.ErrorIs(t, err, ErrPremiumRequired)
		assert.Nil(t, result)
		wallpapers.AssertNotCalled(t, "SaveCustomWallpaper")
	})
}

func TestService_ListAndRemove(t *testing.T) {
	t.Run("list generated caps at limit", func(t *testing.T) {
		wallpapers := new(MockWallpaperRepository)
		service := newService(new(MockUserRepository), wallpapers, new(MockPromptAI))

		expected := []*models.GeneratedWallpaper{{ID: "wp1"}, {ID: "wp2"}}
		wallpapers.On("ListGeneratedWallpapers", mock.Anything, "u1", int64(listLimit)).Return(expected, nil).Once()

		result, err := service.ListGenerated(context.Background(), "u1")

		assert.NoError(t, err)
		assert.Equal(t, expected, result)
		wallpapers.AssertExpectations(t)
	})

	t.Run("list custom caps at limit", func(t *testing.T) {
		wallpapers := new(MockWallpaperRepository)
		service := newService(new(MockUserRepository), wallpapers, new(MockPromptAI))

		expected := []*models.CustomWallpaper{{ID: "cw1"}}
		wallpapers.On("ListCustomWallpapers", mock.Anything, "u1", int64(listLimit)).Return(expected, nil).Once()

		result, err := service.ListCustom(context.Background(), "u1")

		assert.NoError(t, err)
		assert.Equal(t, expected, result)
	})

	t.Run("remove maps missing wallpaper", func(t *testing.T) {
		wallpapers := new(MockWallpaperRepository)
		service := newService(new(MockUserRepository), wallpapers, new(MockPromptAI))

		wallpapers.On("RemoveGeneratedWallpaper", mock.Anything, "wp9", "u1").Return(storage.ErrWallpaperNotFound).Once()
		wallpapers.On("RemoveCustomWallpaper", mock.Anything, "cw9", "u1").Return(storage.ErrWallpaperNotFound).Once()

		assert.ErrorIs(t, service.RemoveGenerated(context.Background(), "wp9", "u1"), ErrWallpaperNotFound)
		assert.ErrorIs(t, service.RemoveCustom(context.Background(), "cw9", "u1"), ErrWallpaperNotFound)
	})

	t.Run("remove success", func(t *testing.T) {
		wallpapers := new(MockWallpaperRepository)
		service := newService(new(MockUserRepository), wallpapers, new(MockPromptAI))

		wallpapers.On("RemoveGeneratedWallpaper", mock.Anything, "wp1", "u1").Return(nil).Once()

		assert.NoError(t, service.RemoveGenerated(context.Background(), "wp1", "u1"))
	})
}
