package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the two-state status of an item.
type ItemStatus string

const (
	StatusUnsolved ItemStatus = "UNSOLVED"
	StatusSolved   ItemStatus = "SOLVED"
)

// Valid reports whether s is one of the known statuses.
func (s ItemStatus) Valid() bool {
	return s == StatusUnsolved || s == StatusSolved
}

// ShoppingList is a named list owned by exactly one user.
// The owner never appears in Members.
type ShoppingList struct {
	// ID is the unique identifier for the list (UUID format).
	ID string `json:"id"`

	// Name is the display name of the list, 3 to 30 characters.
	Name string `json:"name"`

	// OwnerUserID is the creator of the list. Immutable after creation.
	OwnerUserID string `json:"ownerUserId"`

	// Members are the user IDs granted member access. Unordered, unique.
	Members []string `json:"members"`

	// Items are kept in insertion order.
	Items []Item `json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasMember reports whether userID is a member (not the owner) of the list.
func (l *ShoppingList) HasMember(userID string) bool {
	return slices.Contains(l.Members, userID)
}

// Item is a single entry on a shopping list.
type Item struct {
	// ID is unique within the parent list.
	ID     string     `json:"itemId"`
	Name   string     `json:"name"`
	Status ItemStatus `json:"status"`
}

// NewShoppingList builds an empty list owned by ownerUserID.
func NewShoppingList(name, ownerUserID string) *ShoppingList {
	now := time.Now().UTC().Truncate(time.Second)
	return &ShoppingList{
		ID:          uuid.New().String(),
		Name:        name,
		OwnerUserID: ownerUserID,
		Members:     []string{},
		Items:       []Item{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewItem builds an item with a fresh ID. An empty status defaults to UNSOLVED.
func NewItem(name string, status ItemStatus) Item {
	if status == "" {
		status = StatusUnsolved
	}
	return Item{
		ID:     uuid.New().String(),
		Name:   name,
		Status: status,
	}
}
