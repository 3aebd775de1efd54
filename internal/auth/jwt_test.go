package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/shoplist/internal/models"
)

func testUser() *models.User {
	return &models.User{ID: "user-1", UserName: "test@test.com", DisplayName: "test"}
}

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	id := claims.Identity()
	if id.UserID != "user-1" || id.UserName != "test@test.com" || id.DisplayName != "test" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestValidate_Expired(t *testing.T) {
	m := NewJWTManager("secret", -time.Second)

	token, err := m.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = m.Validate(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)

	foreign, err := other.Generate(testUser())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"})
	noExpToken, err := noExp.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  foreign,
		"no expiration": noExpToken,
		"truncated":     foreign[:len(foreign)-4],
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestValidate_Empty(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	if _, err := m.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}
