package service

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/middleware"
	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListService serves shopping lists, their members and items.
// Role checks happen in middleware before these handlers run; the handlers
// apply the remaining membership rules and call the store.
type ListService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewListService creates a ListService with the given storage backend.
func NewListService(store storage.Store, logger *slog.Logger) *ListService {
	return &ListService{store: store, logger: logger}
}

// Create creates a list owned by the caller.
func (s *ListService) Create(c *gin.Context) {
	req := middleware.Body[CreateListRequest](c)
	userID := middleware.GetUserID(c.Request.Context())

	list := models.NewShoppingList(req.Name, userID)
	if err := s.store.CreateList(c.Request.Context(), list); err != nil {
		s.logger.Error("CreateList failed", "error", err)
		apierror.Abort(c, apierror.Internal(err))
		return
	}

	s.logger.Info("Shopping list created", "list_id", list.ID, "owner_user_id", userID)
	c.JSON(http.StatusCreated, success(list, "Shopping list created successfully"))
}

// List pages over the lists visible to the caller. Admins see every list.
func (s *ListService) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(ctx)
	page := positiveQuery(c, "page", defaultPage)
	limit := min(positiveQuery(c, "limit", defaultLimit), maxLimit)
	meta := &PageMeta{Page: page, Limit: limit}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	window, ok := pageWindow(page, limit)
	if !ok {
		// Past any page a store could hold.
		c.JSON(http.StatusOK, Response{Status: "success", Data: []*models.ShoppingList{}, Meta: meta})
		return
	}

	var lists []*models.ShoppingList
	if user.IsAdmin {
		lists, err = s.store.ListAll(ctx, window)
	} else {
		lists, err = s.store.ListForUser(ctx, userID, window)
	}
	if err != nil {
		s.logger.Error("ListLists failed", "user_id", userID, "error", err)
		apierror.Abort(c, apierror.Internal(err))
		return
	}

	s.logger.Info("ListLists successful", "user_id", userID, "count", len(lists))
	c.JSON(http.StatusOK, Response{
		Status: "success",
		Data:   lists,
		Meta:   meta,
	})
}

// Get returns a single list.
func (s *ListService) Get(c *gin.Context) {
	list, err := s.store.GetList(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}
	c.JSON(http.StatusOK, success(list, ""))
}

// Delete removes a list.
func (s *ListService) Delete(c *gin.Context) {
	listID := c.Param("id")
	if err := s.store.DeleteList(c.Request.Context(), listID); err != nil {
		s.logger.Error("DeleteList failed", "list_id", listID, "error", err)
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Shopping list deleted", "list_id", listID)
	c.JSON(http.StatusOK, success(struct{}{}, "Shopping list deleted successfully"))
}

// AddMember grants member access to an existing user.
func (s *ListService) AddMember(c *gin.Context) {
	ctx := c.Request.Context()
	listID := c.Param("id")
	candidate := middleware.Body[AddMemberRequest](c).Member

	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}
	if err := checkAddMember(list, candidate); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	if _, err := s.store.GetUserByID(ctx, candidate); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			err = ErrCandidateAbsent
		}
		apierror.Abort(c, toAPIError(err))
		return
	}

	if err := s.store.AddMember(ctx, listID, candidate); err != nil {
		s.logger.Error("AddMember failed", "list_id", listID, "error", err)
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Member added", "list_id", listID, "member_id", candidate)
	s.respondWithList(c, http.StatusCreated, listID, "Member added successfully to the list!")
}

// RemoveMember revokes membership. The self-only rule is checked before the
// store is touched.
func (s *ListService) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()
	listID := c.Param("id")
	target := c.Param("idMember")
	callerID := middleware.GetUserID(ctx)

	if err := checkRemoveMember(middleware.CurrentRole(c), callerID, target); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	if err := s.store.RemoveMember(ctx, listID, target); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Member removed", "list_id", listID, "member_id", target, "by", callerID)
	s.respondWithList(c, http.StatusOK, listID, "Member deleted successfully!")
}

// AddItem appends an item to the list.
func (s *ListService) AddItem(c *gin.Context) {
	listID := c.Param("id")
	req := middleware.Body[AddItemRequest](c)

	item := models.NewItem(req.Name, req.Status)
	if err := s.store.AddItem(c.Request.Context(), listID, item); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Item added", "list_id", listID, "item_id", item.ID)
	s.respondWithList(c, http.StatusCreated, listID, "Item added successfully to the list!")
}

// RemoveItem deletes an item from the list.
func (s *ListService) RemoveItem(c *gin.Context) {
	listID := c.Param("id")
	itemID := c.Param("idItem")

	if err := s.store.RemoveItem(c.Request.Context(), listID, itemID); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Item removed", "list_id", listID, "item_id", itemID)
	s.respondWithList(c, http.StatusOK, listID, "Item deleted successfully!")
}

// UpdateItem sets the status of an item. Either status may be set at any time.
func (s *ListService) UpdateItem(c *gin.Context) {
	listID := c.Param("id")
	itemID := c.Param("idItem")
	req := middleware.Body[UpdateItemStatusRequest](c)

	if err := s.store.UpdateItemStatus(c.Request.Context(), listID, itemID, req.Status); err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}

	s.logger.Info("Item updated", "list_id", listID, "item_id", itemID, "status", req.Status)
	s.respondWithList(c, http.StatusOK, listID, "Item updated successfully!")
}

// respondWithList re-reads the list after a mutation and writes it.
func (s *ListService) respondWithList(c *gin.Context, status int, listID, message string) {
	list, err := s.store.GetList(c.Request.Context(), listID)
	if err != nil {
		apierror.Abort(c, toAPIError(err))
		return
	}
	c.JSON(status, success(list, message))
}

// pageWindow converts a 1-based page into a skip count. It reports false when
// the skip does not fit in an int.
func pageWindow(page, limit int) (storage.Page, bool) {
	if page-1 > math.MaxInt/limit {
		return storage.Page{}, false
	}
	return storage.Page{Skip: (page - 1) * limit, Limit: limit}, true
}

// positiveQuery parses a positive integer query parameter, falling back to def.
func positiveQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
