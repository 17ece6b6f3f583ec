// Package models содержит доменные модели приложения: пользователя,
// обои (сгенерированные и пользовательские) и событие подписки платёжного
// провайдера. Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Provider — закрытый тип источника учётной записи пользователя.
// Значение валидируется на границе (HTTP-запрос), в хранилище попадают
// только перечисленные варианты.
type Provider string

// Допустимые значения провайдера учётной записи.
const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderApple    Provider = "apple"
	ProviderFacebook Provider = "facebook"
)

// Valid сообщает, входит ли значение в закрытый перечень провайдеров.
func (p Provider) Valid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderApple, ProviderFacebook:
		return true
	}
	return false
}

// Social сообщает, является ли провайдер социальным (не local).
func (p Provider) Social() bool {
	return p.Valid() && p != ProviderLocal
}

// Статусы подписки повторяют словарь платёжного провайдера и хранятся
// как непрозрачные строки; повторно не валидируются.
const (
	SubscriptionNone     = "none"
	SubscriptionTrialing = "trialing"
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// IsPremiumStatus выводит признак premium из статуса подписки.
// Инвариант системы: is_premium == IsPremiumStatus(subscription_status).
func IsPremiumStatus(status string) bool {
	return status == SubscriptionActive || status == SubscriptionTrialing
}

// User представляет зарегистрированного пользователя приложения.
// Пароль хранится только для provider == local; stripe-поля заполняются
// по мере привязки пользователя к платёжному провайдеру.
type User struct {
	ID                   string     `bson:"_id,omitempty" json:"id"`
	Email                string     `bson:"email" json:"email"` // Уникальный, в нижнем регистре
	PasswordHash         string     `bson:"password_hash,omitempty" json:"-"`
	Provider             Provider   `bson:"provider" json:"provider"`
	DisplayName          string     `bson:"display_name,omitempty" json:"displayName,omitempty"`
	ProfilePicture       string     `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	StripeCustomerID     string     `bson:"stripe_customer_id,omitempty" json:"-"`
	StripeSubscriptionID string     `bson:"stripe_subscription_id,omitempty" json:"-"`
	SubscriptionStatus   string     `bson:"subscription_status" json:"subscriptionStatus"`
	IsPremium            bool       `bson:"is_premium" json:"isPremium"`
	SubscriptionEndDate  *time.Time `bson:"subscription_end_date,omitempty" json:"subscriptionEndDate,omitempty"`
	// SubscriptionEventTS — время (created) последнего применённого события
	// провайдера; события старше игнорируются, чтобы пришедшие не по порядку
	// доставки webhook'и не затирали более новое состояние.
	SubscriptionEventTS *time.Time `bson:"subscription_event_ts,omitempty" json:"-"`
	CreatedAt           time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"-"`
}
