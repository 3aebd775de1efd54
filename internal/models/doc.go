// Package models defines the core domain models for the shopping list service.
//
// # Models
//
//   - User: registered account; the admin flag is global, not per list
//   - ShoppingList: named list with exactly one owner, a set of members and ordered items
//   - Item: a single entry on a list with a two-state status
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers (OwnerUserID, Members)
//  2. Roles are never stored; they are computed per request from a (user, list) pair
//  3. JSON tags follow the public wire format of the HTTP API
package models
