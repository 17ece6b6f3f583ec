package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/wallflow-app/wallflow-backend/internal/config"
	"github.com/wallflow-app/wallflow-backend/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	container, err := tcmongodb.Run(ctx, "mongo:7")
	require.NoError(t, err, "failed to start container")

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err, "failed to get connection string")

	storage, err := New(ctx, config.MongoConnection{
		URI:            uri,
		Database:       "wallflow_test",
		ConnectTimeout: 10 * time.Second,
		RetryAttempts:  5,
		RetryInterval:  time.Second,
	})
	require.NoError(t, err, "failed to create storage after retries")

	cleanup := func() {
		_ = storage.Close(ctx)
		_ = testcontainers.TerminateContainer(container)
	}
	return storage, cleanup
}

func createTestUser(t *testing.T, s *Storage, email, customerID string) *models.User {
	ctx := context.Background()
	_, err := s.CreateUser(ctx, models.User{
		Email:    email,
		Provider: models.ProviderLocal,
	})
	require.NoError(t, err)

	if customerID != "" {
		_, err = s.SetStripeCustomerID(ctx, email, customerID)
		require.NoError(t, err)
	}
	user, err := s.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	return user
}

func TestStorage_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("create and find by lowercased email", func(t *testing.T) {
		id, err := storage.CreateUser(ctx, models.User{
			Email:    "Mixed.Case@Example.com",
			Provider: models.ProviderLocal,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		user, err := storage.FindUserByEmail(ctx, "mixed.case@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "mixed.case@example.com", user.Email)
		assert.Equal(t, models.SubscriptionNone, user.SubscriptionStatus)
		assert.False(t, user.IsPremium)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, models.User{Email: "dup@example.com", Provider: models.ProviderLocal})
		require.NoError(t, err)

		_, err = storage.CreateUser(ctx, models.User{Email: "dup@example.com", Provider: models.ProviderGoogle})
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := storage.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("relink local account to social provider", func(t *testing.T) {
		createTestUser(t, storage, "relink@example.com", "")

		user, err := storage.RelinkProvider(ctx, "relink@example.com", models.ProviderGoogle, "Google Name")
		require.NoError(t, err)
		assert.Equal(t, models.ProviderGoogle, user.Provider)
		assert.Equal(t, "Google Name", user.DisplayName)
	})

	t.Run("customer id is written once", func(t *testing.T) {
		createTestUser(t, storage, "link@example.com", "cus_first")

		user, err := storage.SetStripeCustomerID(ctx, "link@example.com", "cus_second")
		require.NoError(t, err)
		assert.Equal(t, "cus_first", user.StripeCustomerID)
	})
}

func TestStorage_SubscriptionStateMachine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t0 := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)

	t.Run("trialing then cancel scenario", func(t *testing.T) {
		createTestUser(t, storage, "trial@example.com", "cus_trial")

		user, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			Type:           "customer.subscription.updated",
			CustomerID:     "cus_trial",
			SubscriptionID: "sub_1",
			Status:         models.SubscriptionTrialing,
			PeriodEnd:      periodEnd,
			OccurredAt:     t0,
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.True(t, user.IsPremium)
		assert.Equal(t, models.SubscriptionTrialing, user.SubscriptionStatus)
		require.NotNil(t, user.SubscriptionEndDate)
		assert.WithinDuration(t, periodEnd, *user.SubscriptionEndDate, time.Second)

		user, err = storage.ApplySubscriptionCancel(ctx, "cus_trial", t0.Add(time.Hour))
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.False(t, user.IsPremium)
		assert.Equal(t, models.SubscriptionCanceled, user.SubscriptionStatus)
		// Дата окончания сохраняется для аудита.
		require.NotNil(t, user.SubscriptionEndDate)
		assert.WithinDuration(t, periodEnd, *user.SubscriptionEndDate, time.Second)
	})

	t.Run("active event sets premium", func(t *testing.T) {
		createTestUser(t, storage, "active@example.com", "cus_active")

		user, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			Type:           "customer.subscription.created",
			CustomerID:     "cus_active",
			SubscriptionID: "sub_2",
			Status:         models.SubscriptionActive,
			PeriodEnd:      periodEnd,
			OccurredAt:     t0,
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.True(t, user.IsPremium)
		assert.Equal(t, "sub_2", user.StripeSubscriptionID)
	})

	t.Run("past_due event drops premium", func(t *testing.T) {
		createTestUser(t, storage, "pastdue@example.com", "cus_pastdue")

		_, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			CustomerID: "cus_pastdue", SubscriptionID: "sub_3",
			Status: models.SubscriptionActive, PeriodEnd: periodEnd, OccurredAt: t0,
		})
		require.NoError(t, err)

		user, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			CustomerID: "cus_pastdue", SubscriptionID: "sub_3",
			Status: models.SubscriptionPastDue, PeriodEnd: periodEnd, OccurredAt: t0.Add(time.Hour),
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.False(t, user.IsPremium)
		assert.Equal(t, models.SubscriptionPastDue, user.SubscriptionStatus)
	})

	t.Run("unknown customer id is a no-op without error", func(t *testing.T) {
		user, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			CustomerID: "cus_ghost", SubscriptionID: "sub_x",
			Status: models.SubscriptionActive, PeriodEnd: periodEnd, OccurredAt: t0,
		})
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = storage.ApplySubscriptionCancel(ctx, "cus_ghost", t0)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("stale event does not overwrite newer state", func(t *testing.T) {
		createTestUser(t, storage, "ordered@example.com", "cus_ordered")

		_, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			CustomerID: "cus_ordered", SubscriptionID: "sub_4",
			Status: models.SubscriptionActive, PeriodEnd: periodEnd, OccurredAt: t0.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		// Событие старше уже применённого: должно быть проигнорировано.
		user, err := storage.ApplySubscriptionUpsert(ctx, models.SubscriptionEvent{
			CustomerID: "cus_ordered", SubscriptionID: "sub_4",
			Status: models.SubscriptionCanceled, PeriodEnd: periodEnd, OccurredAt: t0,
		})
		require.NoError(t, err)
		assert.Nil(t, user)

		current, err := storage.FindUserByEmail(ctx, "ordered@example.com")
		require.NoError(t, err)
		assert.True(t, current.IsPremium)
		assert.Equal(t, models.SubscriptionActive, current.SubscriptionStatus)
	})
}

func TestStorage_Wallpapers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	storage, cleanup := setupTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("generated wallpapers are listed newest first", func(t *testing.T) {
		for _, prompt := range []string{"first", "second", "third"} {
			_, err := storage.SaveGeneratedWallpaper(ctx, models.GeneratedWallpaper{
				UserID:   "u1",
				Prompt:   prompt,
				ImageURL: "https://img.example.com/" + prompt,
			})
			require.NoError(t, err)
			time.Sleep(5 * time.Millisecond)
		}

		list, err := storage.ListGeneratedWallpapers(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "third", list[0].Prompt)
		assert.Equal(t, "second", list[1].Prompt)
	})

	t.Run("remove enforces ownership", func(t *testing.T) {
		id, err := storage.SaveCustomWallpaper(ctx, models.CustomWallpaper{
			UserID:    "owner",
			ImageData: "base64data",
		})
		require.NoError(t, err)

		err = storage.RemoveCustomWallpaper(ctx, id, "intruder")
		assert.ErrorIs(t, err, ErrWallpaperNotFound)

		err = storage.RemoveCustomWallpaper(ctx, id, "owner")
		assert.NoError(t, err)

		err = storage.RemoveCustomWallpaper(ctx, id, "owner")
		assert.ErrorIs(t, err, ErrWallpaperNotFound)
	})

	t.Run("metadata round-trips", func(t *testing.T) {
		id, err := storage.SaveCustomWallpaper(ctx, models.CustomWallpaper{
			UserID:    "u2",
			ImageData: "base64data",
			Metadata: &models.WallpaperMetadata{
				Filters: map[string]float64{"brightness": 1.2},
				TextElements: []models.TextElement{
					{Text: "hello", X: 10, Y: 20, FontSize: 24, Color: "#fff"},
				},
			},
		})
		require.NoError(t, err)

		list, err := storage.ListCustomWallpapers(ctx, "u2", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, id, list[0].ID)
		require.NotNil(t, list[0].Metadata)
		assert.Equal(t, 1.2, list[0].Metadata.Filters["brightness"])
		require.Len(t, list[0].Metadata.TextElements, 1)
		assert.Equal(t, "hello", list[0].Metadata.TextElements[0].Text)
	})
}
