package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
)

//go:generate mockgen -source=users.go -destination=mock_users.go -package=handlers

// UserLister defines the interface that the listing service must implement.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// NewListUsersHandler returns an HTTP handler listing every user.
// @Summary List users
// @Description Returns all users, most recently logged in first; users who never logged in come last
// @Tags users
// @Produce json
// @Success 200 {array} models.User "Users"
// @Failure 401 {object} handlers.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} handlers.ErrorResponse "User blocked or deleted"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /users [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list users", "err", err)
			writeError(w, http.StatusInternalServerError, msgServerError)
			return
		}
		if users == nil {
			users = []models.User{}
		}

		writeJSON(w, http.StatusOK, users)
	}
}
