package service

import "github.com/mmynk/shoplist/internal/models"

// RegisterRequest is the body of POST /user/register.
type RegisterRequest struct {
	UserName string `json:"userName" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6,max=50"`
	Name     string `json:"name" validate:"required,min=3,max=30"`
	// IsAdmin is accepted for compatibility; registration never grants admin.
	IsAdmin *bool `json:"isAdmin,omitempty"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued token.
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateListRequest is the body of POST /shoppingList.
type CreateListRequest struct {
	Name string `json:"name" validate:"required,min=3,max=30"`
}

// AddMemberRequest is the body of POST /shoppingList/:id/members.
type AddMemberRequest struct {
	Member string `json:"members" validate:"required"`
}

// AddItemRequest is the body of POST /shoppingList/:id/items.
type AddItemRequest struct {
	Name   string            `json:"name" validate:"required,min=1,max=30"`
	Status models.ItemStatus `json:"status,omitempty" validate:"omitempty,oneof=SOLVED UNSOLVED"`
}

// UpdateItemStatusRequest is the body of PATCH /shoppingList/:id/items/:idItem.
type UpdateItemStatusRequest struct {
	Status models.ItemStatus `json:"status" validate:"required,oneof=SOLVED UNSOLVED"`
}

// Response is the success envelope.
type Response struct {
	Status  string    `json:"status"`
	Data    any       `json:"data"`
	Message string    `json:"message,omitempty"`
	Meta    *PageMeta `json:"meta,omitempty"`
}

// PageMeta echoes the paging parameters used.
type PageMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func success(data any, message string) Response {
	return Response{Status: "success", Data: data, Message: message}
}
