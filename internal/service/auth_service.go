package service

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/validation"
)

// AuthService serves registration and login.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new user account and returns a token for it.
func (s *AuthService) Register(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		apierror.Abort(c, apierror.Internal(err))
		return
	}

	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	// Presence is checked before the schema so that incomplete
	// credentials are reported as an authentication failure.
	var fields RegisterRequest
	if err := json.Unmarshal(body, &fields); err != nil {
		apierror.Abort(c, apierror.Validation(validation.Errors{{Rule: "json", Message: "malformed JSON: " + err.Error()}}))
		return
	}
	if fields.UserName == "" || fields.Password == "" || fields.Name == "" {
		apierror.Abort(c, apierror.Unauthorized("Username, name and password have to be specified"))
		return
	}

	var req RegisterRequest
	if err := validation.DecodeBytes(body, &req); err != nil {
		apierror.Abort(c, err)
		return
	}

	s.logger.Info("Register request", "user_name", req.UserName)

	user, err := s.authenticator.Register(c.Request.Context(), req.UserName, req.Name, req.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "user_name", req.UserName, "error", err)
		apierror.Abort(c, toAPIError(err))
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		apierror.Abort(c, apierror.Internal(err))
		return
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "user_name", user.UserName)
	c.JSON(http.StatusCreated, TokenResponse{Token: token})
}

// Login authenticates a user and returns a token.
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Login body not decoded", "error", err)
	}
	if req.UserName == "" || req.Password == "" {
		apierror.Abort(c, apierror.Unauthorized("Username and password have to be specified"))
		return
	}

	s.logger.Info("Login request", "user_name", req.UserName)

	user, err := s.authenticator.Authenticate(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		s.logger.Warn("Login failed", "user_name", req.UserName, "error", err)
		apierror.Abort(c, toAPIError(err))
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		apierror.Abort(c, apierror.Internal(err))
		return
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}
