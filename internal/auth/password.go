package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 50
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = fmt.Errorf("password must be %d to %d characters", minPasswordLength, maxPasswordLength)
	ErrUserNameTaken   = errors.New("username already taken")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// ValidateCredential checks the password length bounds.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength || len(credential) > maxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new non-admin user with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, userName, displayName, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	_, err := a.storage.GetUserByUserName(ctx, userName)
	if err == nil {
		return nil, ErrUserNameTaken
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(userName, displayName, string(hashedPassword))

	if err := a.storage.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUserNameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, userName, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUserName(ctx, userName)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}
