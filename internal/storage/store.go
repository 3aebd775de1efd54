// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/shoplist/internal/models"
)

var (
	ErrListNotFound   = errors.New("shopping list not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("username already taken")
	ErrMemberNotFound = errors.New("member is not in the list")
	ErrItemNotFound   = errors.New("item does not exist")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrUserExists if the username is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrUserNotFound if no user has the given ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUserName returns ErrUserNotFound if no user has the given username.
	GetUserByUserName(ctx context.Context, userName string) (*models.User, error)

	// SetAdmin sets the global admin flag for the user with the given username.
	SetAdmin(ctx context.Context, userName string, isAdmin bool) error
}

// Page selects a window of results. Skip is zero-based.
type Page struct {
	Skip  int
	Limit int
}

// ListStore persists shopping lists together with their members and items.
//
// Every mutation is a single conditional statement: it applies only when the
// targeted list (and member or item) exists, and reports the miss through a
// sentinel error instead of a separate read.
type ListStore interface {
	// CreateList persists a new list. ID and timestamps must be set.
	CreateList(ctx context.Context, list *models.ShoppingList) error

	// GetList returns ErrListNotFound if the list does not exist.
	GetList(ctx context.Context, id string) (*models.ShoppingList, error)

	// ListAll pages over every list, for admins.
	ListAll(ctx context.Context, page Page) ([]*models.ShoppingList, error)

	// ListForUser pages over lists owned by or shared with userID.
	ListForUser(ctx context.Context, userID string, page Page) ([]*models.ShoppingList, error)

	// DeleteList removes the list with its members and items.
	DeleteList(ctx context.Context, id string) error

	// AddMember adds userID to the member set. Adding an existing member is a no-op.
	AddMember(ctx context.Context, listID, userID string) error

	// RemoveMember returns ErrMemberNotFound if userID is not a member.
	RemoveMember(ctx context.Context, listID, userID string) error

	// AddItem appends an item to the list.
	AddItem(ctx context.Context, listID string, item models.Item) error

	// RemoveItem returns ErrItemNotFound if the item is not in the list.
	RemoveItem(ctx context.Context, listID, itemID string) error

	// UpdateItemStatus returns ErrItemNotFound if the item is not in the list.
	UpdateItemStatus(ctx context.Context, listID, itemID string, status models.ItemStatus) error
}

// Store combines all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	ListStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
