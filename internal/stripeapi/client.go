// Package stripeapi оборачивает SDK платёжного провайдера: создание
// клиентов, hosted checkout-сессий и отмену подписок. Цена и адреса
// возврата фиксированы конфигурацией — приложение продаёт одну подписку.
package stripeapi

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/wallflow-app/wallflow-backend/internal/config"
)

// CheckoutSession — результат создания hosted-сессии оплаты.
type CheckoutSession struct {
	ID  string
	URL string
}

// Client — клиент платёжного провайдера.
type Client struct {
	api        *client.API
	priceID    string
	successURL string
	cancelURL  string
}

// NewClient создаёт новый клиент платёжного провайдера.
func NewClient(cfg config.Stripe) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Client{
		api:        api,
		priceID:    cfg.PriceID,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

// CreateCustomer регистрирует клиента у провайдера и возвращает его идентификатор.
func (c *Client) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	const op = "stripeapi.CreateCustomer"

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata("userId", userID)

	customer, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return customer.ID, nil
}

// CreateCheckoutSession создаёт hosted-сессию оплаты подписки для клиента.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID string) (*CheckoutSession, error) {
	const op = "stripeapi.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CancelSubscription отменяет подписку у провайдера. Состояние пользователя
// обновится пришедшим следом событием customer.subscription.deleted.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	const op = "stripeapi.CancelSubscription"

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	if _, err := c.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
