package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wallflow-app/wallflow-backend/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его идентификатор.
// Email приводится к нижнему регистру; дубликат даёт ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.mongo.CreateUser"

	now := time.Now().UTC()
	user.ID = newID()
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = models.SubscriptionNone
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return user.ID, nil
}

// FindUserByEmail возвращает пользователя по email или ErrUserNotFound.
func (s *Storage) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongo.FindUserByEmail"

	var u models.User
	err := s.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// UpdateUserProfile обновляет отображаемое имя и аватар, возвращает
// обновлённый документ или ErrUserNotFound.
func (s *Storage) UpdateUserProfile(ctx context.Context, email, displayName, profilePicture string) (*models.User, error) {
	const op = "storage.mongo.UpdateUserProfile"

	set := bson.M{"updated_at": time.Now().UTC()}
	if displayName != "" {
		set["display_name"] = displayName
	}
	if profilePicture != "" {
		set["profile_picture"] = profilePicture
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// RelinkProvider переключает локальную учётную запись на социального провайдера.
func (s *Storage) RelinkProvider(ctx context.Context, email string, provider models.Provider, displayName string) (*models.User, error) {
	const op = "storage.mongo.RelinkProvider"

	set := bson.M{
		"provider":   provider,
		"updated_at": time.Now().UTC(),
	}
	if displayName != "" {
		set["display_name"] = displayName
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"email": strings.ToLower(email)},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// SetStripeCustomerID привязывает идентификатор клиента платёжного провайдера.
// Фильтр не даёт затереть уже сохранённый идентификатор при двойной отправке:
// если он установлен, запрос не матчится и возвращается актуальный документ.
func (s *Storage) SetStripeCustomerID(ctx context.Context, email, customerID string) (*models.User, error) {
	const op = "storage.mongo.SetStripeCustomerID"

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{
			"email": strings.ToLower(email),
			"$or": bson.A{
				bson.M{"stripe_customer_id": bson.M{"$exists": false}},
				bson.M{"stripe_customer_id": ""},
			},
		},
		bson.M{"$set": bson.M{
			"stripe_customer_id": customerID,
			"updated_at":         time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Либо пользователя нет, либо идентификатор уже привязан.
		return s.FindUserByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ApplySubscriptionUpsert атомарно применяет событие created/updated подписки.
//
// Фильтр отсекает как неизвестных клиентов, так и устаревшие события
// (occurred_at не новее сохранённого subscription_event_ts) — обе ситуации
// являются no-op и возвращают (nil, nil). Одного findOneAndUpdate достаточно,
// чтобы конкурирующие доставки не перетирали более новое состояние.
func (s *Storage) ApplySubscriptionUpsert(ctx context.Context, ev models.SubscriptionEvent) (*models.User, error) {
	const op = "storage.mongo.ApplySubscriptionUpsert"

	set := bson.M{
		"stripe_subscription_id": ev.SubscriptionID,
		"subscription_status":    ev.Status,
		"is_premium":             models.IsPremiumStatus(ev.Status),
		"subscription_end_date":  ev.PeriodEnd.UTC(),
		"subscription_event_ts":  ev.OccurredAt.UTC(),
		"updated_at":             time.Now().UTC(),
	}

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		staleGuardFilter(ev.CustomerID, ev.OccurredAt),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ApplySubscriptionCancel атомарно применяет событие deleted подписки.
// Дата окончания не трогается: последняя известная сохраняется для аудита.
func (s *Storage) ApplySubscriptionCancel(ctx context.Context, customerID string, occurredAt time.Time) (*models.User, error) {
	const op = "storage.mongo.ApplySubscriptionCancel"

	var u models.User
	err := s.users.FindOneAndUpdate(ctx,
		staleGuardFilter(customerID, occurredAt),
		bson.M{"$set": bson.M{
			"subscription_status":   models.SubscriptionCanceled,
			"is_premium":            false,
			"subscription_event_ts": occurredAt.UTC(),
			"updated_at":            time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// staleGuardFilter матчит пользователя по customer id, у которого ещё не
// применялось событие новее occurredAt.
func staleGuardFilter(customerID string, occurredAt time.Time) bson.M {
	return bson.M{
		"stripe_customer_id": customerID,
		"$or": bson.A{
			bson.M{"subscription_event_ts": bson.M{"$exists": false}},
			bson.M{"subscription_event_ts": nil},
			bson.M{"subscription_event_ts": bson.M{"$lt": occurredAt.UTC()}},
		},
	}
}
