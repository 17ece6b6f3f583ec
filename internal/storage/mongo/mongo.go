// Package mongo реализует хранилище данных на основе MongoDB
// для управления пользователями и обоями. Предоставляет методы
// создания, чтения, обновления и удаления документов, а также
// атомарные переходы состояния подписки.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wallflow-app/wallflow-backend/internal/config"
)

// Ошибки уровня хранилища; сервисы сопоставляют их с HTTP-статусами.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrWallpaperNotFound = errors.New("wallpaper not found")
)

// Имена коллекций.
const (
	usersCollection     = "users"
	customCollection    = "custom_wallpapers"
	generatedCollection = "generated_wallpapers"
)

// Storage инкапсулирует соединение с MongoDB и реализует методы
// работы с пользователями и обоями.
type Storage struct {
	client    *mongo.Client
	users     *mongo.Collection
	custom    *mongo.Collection
	generated *mongo.Collection
}

// New подключается к MongoDB с повторными попытками и инициализирует
// необходимые коллекции и индексы.
func New(ctx context.Context, cfg config.MongoConnection) (*Storage, error) {
	const op = "storage.mongo.New"

	var client *mongo.Client
	var err error
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for range attempts {
		client, err = mongo.Connect(
			options.Client().
				ApplyURI(cfg.URI).
				SetConnectTimeout(cfg.ConnectTimeout),
		)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			err = client.Ping(pingCtx, nil)
			cancel()
			if err == nil {
				break
			}
			_ = client.Disconnect(ctx)
		}
		time.Sleep(cfg.RetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db := client.Database(cfg.Database)
	s := &Storage{
		client:    client,
		users:     db.Collection(usersCollection),
		custom:    db.Collection(customCollection),
		generated: db.Collection(generatedCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// ensureIndexes создаёт уникальный индекс по email и индексы выборок обоев.
func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "stripe_customer_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return err
	}
	for _, coll := range []*mongo.Collection{s.custom, s.generated} {
		_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Ping проверяет доступность базы, используется health-эндпоинтом.
func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.mongo.Ping"
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// newID генерирует строковый идентификатор документа.
func newID() string {
	return bson.NewObjectID().Hex()
}
