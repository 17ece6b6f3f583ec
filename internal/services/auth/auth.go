// Package auth содержит логику бизнес-уровня для работы с пользователями:
// регистрация, вход по паролю, вход через социального провайдера и
// обновление профиля. Выпускает JWT для успешно аутентифицированных.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wallflow-app/wallflow-backend/internal/lib/jwt"
	"github.com/wallflow-app/wallflow-backend/internal/lib/password"
	"github.com/wallflow-app/wallflow-backend/internal/models"
	storage "github.com/wallflow-app/wallflow-backend/internal/storage/mongo"
)

// Ошибки бизнес-уровня; обработчики сопоставляют их с HTTP-статусами.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (string, error)
	// FindUserByEmail возвращает пользователя по email или ошибку, если не найден.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUserProfile обновляет отображаемое имя и аватар.
	UpdateUserProfile(ctx context.Context, email, displayName, profilePicture string) (*models.User, error)
	// RelinkProvider переключает учётную запись на социального провайдера.
	RelinkProvider(ctx context.Context, email string, provider models.Provider, displayName string) (*models.User, error)
}

// AuthService отвечает за регистрацию, авторизацию и выпуск JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает локального пользователя с хэшированием пароля
// и возвращает его вместе с токеном доступа.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:              strings.ToLower(email),
		PasswordHash:       hashed,
		Provider:           models.ProviderLocal,
		SubscriptionStatus: models.SubscriptionNone,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrUserExists) {
		return nil, "", ErrUserExists
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	user.ID = id

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &user, token, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
// Учётные записи социальных провайдеров паролем не владеют и по паролю не входят.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "auth.Login"

	user, err := s.users.FindUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if user.PasswordHash == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// SocialLogin входит (или регистрирует) пользователя социального провайдера.
// Существующая локальная учётная запись перепривязывается к провайдеру —
// поведение мобильного клиента, связывающего оба входа по email.
func (s *AuthService) SocialLogin(ctx context.Context, email string, provider models.Provider, displayName, profilePicture string) (*models.User, string, error) {
	const op = "auth.SocialLogin"

	if !provider.Social() {
		return nil, "", fmt.Errorf("%s: unsupported provider %q", op, provider)
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		newUser := models.User{
			Email:              strings.ToLower(email),
			Provider:           provider,
			DisplayName:        displayName,
			ProfilePicture:     profilePicture,
			SubscriptionStatus: models.SubscriptionNone,
		}
		id, createErr := s.users.CreateUser(ctx, newUser)
		if createErr != nil {
			return nil, "", fmt.Errorf("%s: %w", op, createErr)
		}
		newUser.ID = id
		user = &newUser
	case err != nil:
		return nil, "", fmt.Errorf("%s: %w", op, err)
	case user.Provider == models.ProviderLocal:
		user, err = s.users.RelinkProvider(ctx, email, provider, displayName)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// UpdateProfile обновляет отображаемое имя и аватар пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, email, displayName, profilePicture string) (*models.User, error) {
	const op = "auth.UpdateProfile"

	user, err := s.users.UpdateUserProfile(ctx, email, displayName, profilePicture)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
