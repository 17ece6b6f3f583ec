package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// SaveCustomWallpaper сохраняет пользовательские обои и возвращает их идентификатор.
func (s *Storage) SaveCustomWallpaper(ctx context.Context, w models.CustomWallpaper) (string, error) {
	const op = "storage.mongo.SaveCustomWallpaper"

	w.ID = newID()
	w.CreatedAt = time.Now().UTC()
	if _, err := s.custom.InsertOne(ctx, w); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return w.ID, nil
}

// ListCustomWallpapers возвращает до limit новейших обоев пользователя.
func (s *Storage) ListCustomWallpapers(ctx context.Context, userID string, limit int64) ([]*models.CustomWallpaper, error) {
	const op = "storage.mongo.ListCustomWallpapers"

	cursor, err := s.custom.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []*models.CustomWallpaper
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveCustomWallpaper удаляет обои, принадлежащие пользователю.
// Чужой или несуществующий документ даёт ErrWallpaperNotFound.
func (s *Storage) RemoveCustomWallpaper(ctx context.Context, id, userID string) error {
	const op = "storage.mongo.RemoveCustomWallpaper"

	res, err := s.custom.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrWallpaperNotFound)
	}
	return nil
}

// SaveGeneratedWallpaper сохраняет метаданные сгенерированных обоев.
func (s *Storage) SaveGeneratedWallpaper(ctx context.Context, w models.GeneratedWallpaper) (string, error) {
	const op = "storage.mongo.SaveGeneratedWallpaper"

	w.ID = newID()
	w.CreatedAt = time.Now().UTC()
	if _, err := s.generated.InsertOne(ctx, w); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return w.ID, nil
}

// ListGeneratedWallpapers возвращает до limit новейших сгенерированных обоев.
func (s *Storage) ListGeneratedWallpapers(ctx context.Context, userID string, limit int64) ([]*models.GeneratedWallpaper, error) {
	const op = "storage.mongo.ListGeneratedWallpapers"

	cursor, err := s.generated.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var result []*models.GeneratedWallpaper
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveGeneratedWallpaper удаляет сгенерированные обои пользователя.
func (s *Storage) RemoveGeneratedWallpaper(ctx context.Context, id, userID string) error {
	const op = "storage.mongo.RemoveGeneratedWallpaper"

	res, err := s.generated.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, ErrWallpaperNotFound)
	}
	return nil
}
