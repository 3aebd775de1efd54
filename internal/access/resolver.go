package access

import (
	"context"
	"fmt"

	"github.com/mmynk/shoplist/internal/models"
)

// UserReader is the part of the user store the resolver needs.
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ListReader is the part of the list store the resolver needs.
type ListReader interface {
	GetList(ctx context.Context, id string) (*models.ShoppingList, error)
}

// RoleOf applies the fixed precedence: admin flag, then ownership, then
// membership. Everyone else is a visitor.
func RoleOf(user *models.User, list *models.ShoppingList) Role {
	switch {
	case user.IsAdmin:
		return Admin
	case list.OwnerUserID == user.ID:
		return Owner
	case list.HasMember(user.ID):
		return Member
	default:
		return Visitor
	}
}

// Resolver computes roles from the current user and list state.
// Both are re-read on every call; privileges may change between requests.
type Resolver struct {
	users UserReader
	lists ListReader
}

// NewResolver creates a resolver over the given stores.
func NewResolver(users UserReader, lists ListReader) *Resolver {
	return &Resolver{users: users, lists: lists}
}

// ResolveRole returns the role of userID on listID. The list is looked up
// first so a missing list is reported as storage.ErrListNotFound.
func (r *Resolver) ResolveRole(ctx context.Context, userID, listID string) (Role, error) {
	list, err := r.lists.GetList(ctx, listID)
	if err != nil {
		return Visitor, fmt.Errorf("resolve role: %w", err)
	}

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		return Visitor, fmt.Errorf("resolve role: %w", err)
	}

	return RoleOf(user, list), nil
}
