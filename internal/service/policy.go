package service

import (
	"errors"
	"net/http"

	"github.com/mmynk/shoplist/internal/access"
	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/middleware"
	"github.com/mmynk/shoplist/internal/models"
	"github.com/mmynk/shoplist/internal/storage"
)

var (
	ErrOwnerAsMember   = errors.New("owner cannot be added as a member")
	ErrMemberSelfOnly  = errors.New("members can only remove themselves")
	ErrCandidateAbsent = errors.New("user does not exist")
)

// checkAddMember rejects the list owner as a member candidate.
func checkAddMember(list *models.ShoppingList, candidateID string) error {
	if list.OwnerUserID == candidateID {
		return ErrOwnerAsMember
	}
	return nil
}

// checkRemoveMember enforces that a plain member may only remove themselves.
// Owners and admins may remove anyone.
func checkRemoveMember(callerRole access.Role, callerID, targetID string) error {
	if callerRole == access.Member && callerID != targetID {
		return ErrMemberSelfOnly
	}
	return nil
}

// toAPIError maps domain and storage errors to their HTTP form.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, ErrOwnerAsMember):
		return apierror.BadRequest("Owner cannot be added as a member.")
	case errors.Is(err, ErrCandidateAbsent):
		return apierror.BadRequest("User does not exist.")
	case errors.Is(err, ErrMemberSelfOnly):
		return apierror.Forbidden("Forbidden: Members can only remove themselves.")
	case errors.Is(err, storage.ErrMemberNotFound):
		return apierror.BadRequest("Member is not in the list.")
	case errors.Is(err, storage.ErrItemNotFound):
		return apierror.BadRequest("Item does not exist.")
	case errors.Is(err, storage.ErrListNotFound):
		return apierror.NotFound("Shopping list not found")
	case errors.Is(err, storage.ErrUserNotFound):
		return apierror.Wrap(http.StatusUnauthorized, middleware.MsgWrongAuthorization, err)
	case errors.Is(err, auth.ErrUserNameTaken):
		return apierror.BadRequest("Username already taken")
	case errors.Is(err, auth.ErrUserNotFound):
		return apierror.NotFound("User not found")
	case errors.Is(err, auth.ErrInvalidPassword):
		return apierror.Unauthorized("Invalid password")
	case errors.Is(err, auth.ErrWeakPassword):
		return apierror.BadRequest(auth.ErrWeakPassword.Error())
	default:
		return err
	}
}
