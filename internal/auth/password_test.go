package auth

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

type memUsers struct {
	byName map[string]*models.User
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := m.byName[user.UserName]; ok {
		return storage.ErrUserExists
	}
	m.byName[user.UserName] = user
	return nil
}

func (m *memUsers) GetUserByUserName(_ context.Context, userName string) (*models.User, error) {
	if u, ok := m.byName[userName]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func newTestAuthenticator() *PasswordAuthenticator {
	a := NewPasswordAuthenticator(&memUsers{byName: map[string]*models.User{}})
	a.cost = bcrypt.MinCost
	return a
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	user, err := a.Register(ctx, "test@test.com", "test", "test123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.IsAdmin {
		t.Error("registered user must not be admin")
	}
	if user.PasswordHash == "test123" {
		t.Error("password stored in clear text")
	}

	got, err := a.Authenticate(ctx, "test@test.com", "test123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated wrong user: %s", got.ID)
	}

	if _, err := a.Authenticate(ctx, "test@test.com", "wrong-password"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@test.com", "test123"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	a := newTestAuthenticator()
	ctx := context.Background()

	if _, err := a.Register(ctx, "test@test.com", "test", "test123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "test@test.com", "again", "test123"); !errors.Is(err, ErrUserNameTaken) {
		t.Errorf("expected ErrUserNameTaken, got %v", err)
	}
}

func TestValidateCredential(t *testing.T) {
	a := newTestAuthenticator()

	tests := []struct {
		password string
		wantErr  bool
	}{
		{"12345", true},
		{"123456", false},
		{string(make([]byte, 50)), false},
		{string(make([]byte, 51)), true},
	}

	for _, tt := range tests {
		err := a.ValidateCredential(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCredential(len=%d) error = %v, wantErr %v", len(tt.password), err, tt.wantErr)
		}
	}
}
