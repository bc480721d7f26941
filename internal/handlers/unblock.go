package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=unblock.go -destination=mock_unblock.go -package=handlers

// Unblocker defines the interface that the unblock service must implement.
type Unblocker interface {
	Unblock(ctx context.Context, ids []int64) error
}

// NewUnblockHandler returns an HTTP handler activating a set of users.
// Unblocking one's own account is allowed.
// @Summary Unblock users
// @Description Sets every listed user back to active in one statement
// @Tags users
// @Accept json
// @Produce json
// @Param request body handlers.BulkRequest true "Users to unblock"
// @Success 200 {object} handlers.MessageResponse "Users unblocked"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} handlers.ErrorResponse "User blocked or deleted"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /unblock [post]
// @Security BearerAuth
func NewUnblockHandler(svc Unblocker, getCaller CallerGetter) http.HandlerFunc {
	return newBulkHandler("unblock", "Users unblocked successfully", getCaller,
		func(ctx context.Context, _ int64, ids []int64) error {
			return svc.Unblock(ctx, ids)
		})
}
