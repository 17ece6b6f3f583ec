// Package billing содержит бизнес-логику биллинга: создание checkout-сессий,
// чтение статуса подписки (с кешированием) и отмену подписки, а также
// машину состояний подписки, управляемую webhook-событиями провайдера.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallflow-app/wallflow-backend/internal/models"
	storage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
	"github.com/wallflow-app/wallflow-backend/internal/stripeapi"
)

// Ошибки бизнес-уровня биллинга.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrNoActiveSubscription = errors.New("no active subscription found")
)

const (
	statusCacheTTL    = 5 * time.Minute
	statusCachePrefix = "substatus:"
)

// UserRepository определяет методы хранилища, нужные биллингу.
type UserRepository interface {
	// FindUserByEmail возвращает пользователя по email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// SetStripeCustomerID привязывает customer id, не затирая существующий.
	SetStripeCustomerID(ctx context.Context, email, customerID string) (*models.User, error)
	// ApplySubscriptionUpsert атомарно применяет событие created/updated.
	ApplySubscriptionUpsert(ctx context.Context, ev models.SubscriptionEvent) (*models.User, error)
	// ApplySubscriptionCancel атомарно применяет событие deleted.
	ApplySubscriptionCancel(ctx context.Context, customerID string, occurredAt time.Time) (*models.User, error)
}

// PaymentProvider описывает операции платёжного провайдера.
type PaymentProvider interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID string) (*stripeapi.CheckoutSession, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// SubscriptionStatus — публичное представление статуса подписки пользователя.
type SubscriptionStatus struct {
	IsPremium           bool       `json:"isPremium"`
	SubscriptionStatus  string     `json:"subscriptionStatus"`
	SubscriptionEndDate *time.Time `json:"subscriptionEndDate"`
}

// Service реализует бизнес-логику биллинга.
type Service struct {
	repo     UserRepository
	provider PaymentProvider
	cache    Cache
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, provider PaymentProvider, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cache:    cache,
		log:      log,
	}
}

// CreateCheckoutSession создаёт hosted-сессию оплаты для пользователя.
// Если у пользователя ещё нет customer id, он создаётся у провайдера и
// персистится; уже привязанный идентификатор повторно не создаётся.
func (s *Service) CreateCheckoutSession(ctx context.Context, email string) (*stripeapi.CheckoutSession, error) {
	const op = "billing.CreateCheckoutSession"

	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, user.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		updated, err := s.repo.SetStripeCustomerID(ctx, user.Email, customerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// При конкурентной двойной отправке могла победить другая привязка.
		customerID = updated.StripeCustomerID
		s.log.Info("linked payment customer",
			slog.String("email", user.Email), slog.String("customer_id", customerID))
	}

	session, err := s.provider.CreateCheckoutSession(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// GetSubscriptionStatus возвращает статус подписки пользователя,
// используя кеш или хранилище.
func (s *Service) GetSubscriptionStatus(ctx context.Context, email string) (*SubscriptionStatus, error) {
	const op = "billing.GetSubscriptionStatus"

	cacheKey := statusCachePrefix + email
	var cached SubscriptionStatus
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read status from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := &SubscriptionStatus{
		IsPremium:           user.IsPremium,
		SubscriptionStatus:  user.SubscriptionStatus,
		SubscriptionEndDate: user.SubscriptionEndDate,
	}
	if err := s.cache.Set(cacheKey, status, statusCacheTTL); err != nil {
		s.log.Warn("failed to cache status", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return status, nil
}

// CancelSubscription отменяет подписку пользователя у провайдера.
// Пользователь без привязанной подписки считается не имеющим активной.
func (s *Service) CancelSubscription(ctx context.Context, email string) error {
	const op = "billing.CancelSubscription"

	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return ErrNoActiveSubscription
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.StripeSubscriptionID == "" {
		return ErrNoActiveSubscription
	}

	if err := s.provider.CancelSubscription(ctx, user.StripeSubscriptionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription cancellation requested",
		slog.String("email", user.Email), slog.String("subscription_id", user.StripeSubscriptionID))
	return nil
}
