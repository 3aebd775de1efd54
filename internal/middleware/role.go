package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/access"
	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/metrics"
	"github.com/mmynk/shoplist/internal/storage"
)

const roleKey = "role"

// RoleResolver computes a caller's role on a list.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID, listID string) (access.Role, error)
}

// RequireRole resolves the caller's role on the list named by the ":id" path
// parameter and rejects the request when it is below required.
// Must run after RequireAuth.
func RequireRole(resolver RoleResolver, required access.Role, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userID := GetUserID(ctx)
		listID := c.Param("id")

		role, err := resolver.ResolveRole(ctx, userID, listID)
		switch {
		case errors.Is(err, storage.ErrListNotFound):
			apierror.Abort(c, apierror.NotFound("Shopping list not found"))
			return
		case errors.Is(err, storage.ErrUserNotFound):
			// Valid token for a user that no longer exists.
			apierror.Abort(c, apierror.Wrap(http.StatusUnauthorized, MsgWrongAuthorization, err))
			return
		case err != nil:
			apierror.Abort(c, apierror.Internal(err))
			return
		}

		if err := access.Authorize(role, required); err != nil {
			if m != nil {
				m.AccessDenied.WithLabelValues(required.String()).Inc()
			}
			slog.Debug("Access denied",
				"user_id", userID,
				"list_id", listID,
				"role", role.String(),
				"required", required.String(),
			)
			apierror.Abort(c, apierror.Forbidden(err.Error()))
			return
		}

		c.Set(roleKey, role)
		c.Next()
	}
}

// CurrentRole returns the role resolved by RequireRole, or Visitor.
func CurrentRole(c *gin.Context) access.Role {
	if v, ok := c.Get(roleKey); ok {
		if role, ok := v.(access.Role); ok {
			return role
		}
	}
	return access.Visitor
}
