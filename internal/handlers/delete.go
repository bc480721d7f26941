package handlers

import (
	"context"
	"net/http"
)

//go:generate mockgen -source=delete.go -destination=mock_delete.go -package=handlers

// Deleter defines the interface that the delete service must implement.
type Deleter interface {
	Delete(ctx context.Context, callerID int64, ids []int64) error
}

// NewDeleteHandler returns an HTTP handler removing a set of users.
// @Summary Delete users
// @Description Physically removes every listed user. Ids matching no row are ignored. If the caller is among them the rows are removed and 403 is returned.
// @Tags users
// @Accept json
// @Produce json
// @Param request body handlers.BulkRequest true "Users to delete"
// @Success 200 {object} handlers.MessageResponse "Users deleted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} handlers.ErrorResponse "Caller blocked or deleted"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /delete [post]
// @Security BearerAuth
func NewDeleteHandler(svc Deleter, getCaller CallerGetter) http.HandlerFunc {
	return newBulkHandler("delete", "Users deleted successfully", getCaller, svc.Delete)
}
