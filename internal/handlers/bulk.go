package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
	"github.com/sbilibin2017/gw-user-management/internal/services"
)

// CallerGetter returns the authenticated user of the request, or nil.
type CallerGetter func(ctx context.Context) *models.UserDB

// BulkRequest represents the JSON body of block, unblock and delete
// swagger:model BulkRequest
type BulkRequest struct {
	// Target user ids; an empty list is a no-op
	// required: true
	UserIDs []int64 `json:"userIds" validate:"required"`
}

// bulkAction is one of the block/unblock/delete operations.
type bulkAction func(ctx context.Context, callerID int64, ids []int64) error

// newBulkHandler decodes a BulkRequest, runs action for the caller and maps
// services.ErrSelfAction to 403.
func newBulkHandler(name, successMessage string, getCaller CallerGetter, action bulkAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := getCaller(r.Context())
		if caller == nil {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		var req BulkRequest
		if msg := decode(r, &req); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if err := action(r.Context(), caller.ID, req.UserIDs); err != nil {
			switch {
			case errors.Is(err, services.ErrSelfAction):
				writeError(w, http.StatusForbidden, msgUserForbidden)
			default:
				logger.Log.Errorw(name+" failed", "caller_id", caller.ID, "err", err)
				writeError(w, http.StatusInternalServerError, msgServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: successMessage})
	}
}
