package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmynk/shoplist/internal/models"
)

var (
	ErrMissingToken = errors.New("authorization token required")
	ErrExpiredToken = errors.New("token is expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the subject extracted from a verified token.
type Identity struct {
	UserID      string
	UserName    string
	DisplayName string
}

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims represents the custom JWT claims for a user session.
type Claims struct {
	UserID   string `json:"id"`
	UserName string `json:"userName"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

// Identity returns the subject described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.UserID,
		UserName:    c.UserName,
		DisplayName: c.Name,
	}
}

// NewJWTManager creates a new JWT manager with the given secret and token duration.
// A non-positive duration yields tokens that are already expired.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate creates a new signed token for the given user.
func (m *JWTManager) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		UserName: user.UserName,
		Name:     user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses and validates a token. Expired tokens yield ErrExpiredToken,
// every other failure ErrInvalidToken.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
