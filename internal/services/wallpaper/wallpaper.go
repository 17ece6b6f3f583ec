// Package wallpaper содержит бизнес-логику генерации обоев по промпту,
// подсказок промптов и персистенции пользовательских и сгенерированных обоев.
// Премиальные возможности отсекаются здесь, а не в обработчиках.
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallflow-app/wallflow-backend/internal/lib/sl"
	"github.com/wallflow-app/wallflow-backend/internal/models"
	"github.com/wallflow-app/wallflow-backend/internal/promptai"
	storage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
)

// Ошибки бизнес-уровня; обработчики сопоставляют их с HTTP-статусами.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPremiumRequired   = errors.New("premium subscription required")
	ErrFreeTierExceeded  = errors.New("free tier prompt limit exceeded")
	ErrWallpaperNotFound = errors.New("wallpaper not found")
)

const (
	// freeTierPromptLimit — максимальная длина промпта без подписки.
	freeTierPromptLimit = 50
	// listLimit — верхняя граница выборки списков обоев.
	listLimit = 50
)

// stockSuggestions отдаются, когда генеративный сервис недоступен
// или его ответ не разобрался.
var stockSuggestions = []string{
	"A serene mountain lake at golden hour with mist rising from the water",
	"Abstract geometric patterns in deep blues and purples with neon accents",
	"A cyberpunk cityscape at night with rain-slicked streets and glowing signs",
	"Minimalist desert dunes under a pastel gradient sky",
	"A bioluminescent forest with glowing mushrooms and fireflies",
}

// UserRepository отдаёт пользователя для проверки премиального статуса.
type UserRepository interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// WallpaperRepository описывает контракт хранилища обоев.
type WallpaperRepository interface {
	SaveGeneratedWallpaper(ctx context.Context, w models.GeneratedWallpaper) (string, error)
	ListGeneratedWallpapers(ctx context.Context, userID string, limit int64) ([]*models.GeneratedWallpaper, error)
	RemoveGeneratedWallpaper(ctx context.Context, id, userID string) error
	SaveCustomWallpaper(ctx context.Context, w models.CustomWallpaper) (string, error)
	ListCustomWallpapers(ctx context.Context, userID string, limit int64) ([]*models.CustomWallpaper, error)
	RemoveCustomWallpaper(ctx context.Context, id, userID string) error
}

// PromptAI описывает генеративный текстовый сервис и построение
// ссылок на рендер изображений.
type PromptAI interface {
	Enabled() bool
	Model() string
	EnhancePrompt(ctx context.Context, prompt string) (string, error)
	SuggestPrompts(ctx context.Context, basePrompt string) ([]string, error)
	RenderImageURL(prompt string, width, height int) string
}

// Service реализует бизнес-логику работы с обоями.
type Service struct {
	users      UserRepository
	wallpapers WallpaperRepository
	ai         PromptAI
	log        *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, wallpapers WallpaperRepository, ai PromptAI, log *slog.Logger) *Service {
	return &Service{
		users:      users,
		wallpapers: wallpapers,
		ai:         ai,
		log:        log,
	}
}

// premiumUser возвращает пользователя, если у него премиальный статус.
func (s *Service) premiumUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !user.IsPremium {
		return nil, ErrPremiumRequired
	}
	return user, nil
}

// Generate создаёт обои по промпту: улучшает промпт генеративной моделью
// (best-effort), строит ссылку рендера и сохраняет документ.
// Бесплатный тариф ограничен короткими промптами.
func (s *Service) Generate(ctx context.Context, email, userID, prompt string) (*models.GeneratedWallpaper, error) {
	const op = "wallpaper.Generate"

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsPremium && len(prompt) > freeTierPromptLimit {
		return nil, ErrFreeTierExceeded
	}

	finalPrompt := prompt
	if s.ai.Enabled() {
		enhanced, err := s.ai.EnhancePrompt(ctx, prompt)
		if err != nil {
			s.log.Warn("prompt enhancement failed, using raw prompt", sl.Err(err))
		} else {
			finalPrompt = enhanced
		}
	}

	now := time.Now().UTC()
	wallpaper := models.GeneratedWallpaper{
		UserID:   userID,
		Prompt:   finalPrompt,
		ImageURL: s.ai.RenderImageURL(finalPrompt, promptai.WallpaperWidth, promptai.WallpaperHeight),
		Meta: models.GenerationDetails{
			Model:       s.ai.Model(),
			GeneratedAt: now,
			Width:       promptai.WallpaperWidth,
			Height:      promptai.WallpaperHeight,
		},
	}
	id, err := s.wallpapers.SaveGeneratedWallpaper(ctx, wallpaper)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	wallpaper.ID = id
	wallpaper.CreatedAt = now

	s.log.Info("wallpaper generated",
		slog.String("user_id", userID), slog.String("wallpaper_id", id))
	return &wallpaper, nil
}

// Suggest возвращает пять промптов по интересу пользователя. Доступно
// только с подпиской; при недоступности модели отдаются stock-подсказки.
func (s *Service) Suggest(ctx context.Context, email, basePrompt string) ([]string, error) {
	const op = "wallpaper.Suggest"

	if _, err := s.premiumUser(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrPremiumRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.ai.Enabled() {
		return stockSuggestions, nil
	}
	suggestions, err := s.ai.SuggestPrompts(ctx, basePrompt)
	if err != nil {
		s.log.Warn("prompt suggestion failed, using stock list", sl.Err(err))
		return stockSuggestions, nil
	}
	return suggestions, nil
}

// SaveCustom сохраняет пользовательские обои. Доступно только с подпиской.
func (s *Service) SaveCustom(ctx context.Context, email, userID, imageData string, metadata *models.WallpaperMetadata) (*models.CustomWallpaper, error) {
	const op = "wallpaper.SaveCustom"

	if _, err := s.premiumUser(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrPremiumRequired) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	wallpaper := models.CustomWallpaper{
		UserID:    userID,
		ImageData: imageData,
		Metadata:  metadata,
	}
	id, err := s.wallpapers.SaveCustomWallpaper(ctx, wallpaper)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	wallpaper.ID = id
	wallpaper.CreatedAt = time.Now().UTC()
	return &wallpaper, nil
}

// ListGenerated возвращает новейшие сгенерированные обои пользователя.
func (s *Service) ListGenerated(ctx context.Context, userID string) ([]*models.GeneratedWallpaper, error) {
	const op = "wallpaper.ListGenerated"

	result, err := s.wallpapers.ListGeneratedWallpapers(ctx, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveGenerated удаляет сгенерированные обои, принадлежащие пользователю.
func (s *Service) RemoveGenerated(ctx context.Context, id, userID string) error {
	const op = "wallpaper.RemoveGenerated"

	err := s.wallpapers.RemoveGeneratedWallpaper(ctx, id, userID)
	if errors.Is(err, storage.ErrWallpaperNotFound) {
		return ErrWallpaperNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListCustom возвращает новейшие пользовательские обои.
func (s *Service) ListCustom(ctx context.Context, userID string) ([]*models.CustomWallpaper, error) {
	const op = "wallpaper.ListCustom"

	result, err := s.wallpapers.ListCustomWallpapers(ctx, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveCustom удаляет пользовательские обои.
func (s *Service) RemoveCustom(ctx context.Context, id, userID string) error {
	const op = "wallpaper.RemoveCustom"

	err := s.wallpapers.RemoveCustomWallpaper(ctx, id, userID)
	if errors.Is(err, storage.ErrWallpaperNotFound) {
		return ErrWallpaperNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
