package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/metrics"
)

// User-facing authentication failures.
const (
	MsgMissingHeader      = `Missing header "Authorization".`
	MsgTokenExpired       = "Token is expired."
	MsgWrongAuthorization = "Wrong authorization."
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey stores the authenticated auth.Identity.
const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the authenticated identity from the context.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// CurrentIdentity returns the identity RequireAuth stored on the gin context.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(string(identityKey))
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

// RequireAuth verifies the bearer token and adds the caller's identity to the
// request context. Missing, expired and otherwise invalid tokens are told apart.
func RequireAuth(jwtManager *auth.JWTManager, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			authFailed(c, m, "missing", MsgMissingHeader, auth.ErrMissingToken)
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				authFailed(c, m, "expired", MsgTokenExpired, err)
				return
			}
			authFailed(c, m, "invalid", MsgWrongAuthorization, err)
			return
		}

		identity := claims.Identity()
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), identity))
		c.Set(string(identityKey), identity)
		c.Next()
	}
}

// bearerToken strips an optional "Bearer" scheme from the header value.
func bearerToken(header string) string {
	token := strings.TrimSpace(header)
	if rest, ok := strings.CutPrefix(token, "Bearer"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		token = strings.TrimSpace(rest)
	}
	return token
}

func authFailed(c *gin.Context, m *metrics.Metrics, reason, message string, cause error) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	apierror.Abort(c, apierror.Wrap(http.StatusUnauthorized, message, cause))
}
