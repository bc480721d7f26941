package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=block.go -destination=mock_block.go -package=handlers

// Blocker defines the interface that the block service must implement.
type Blocker interface {
	Block(ctx context.Context, callerID int64, ids []int64) error
}

// NewBlockHandler returns an HTTP handler blocking a set of users.
// @Summary Block users
// @Description Blocks every listed user in one statement. If the caller is among them the block is applied and 403 is returned, since the caller's session is now void.
// @Tags users
// @Accept json
// @Produce json
// @Param request body handlers.BulkRequest true "Users to block"
// @Success 200 {object} handlers.MessageResponse "Users blocked"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} handlers.ErrorResponse "Caller blocked or deleted"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /block [post]
// @Security BearerAuth
func NewBlockHandler(svc Blocker, getCaller CallerGetter) http.HandlerFunc {
	return newBulkHandler("block", "Users blocked successfully", getCaller, svc.Block)
}
