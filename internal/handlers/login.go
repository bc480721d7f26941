package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
	"github.com/sbilibin2017/gw-user-management/internal/services"
)

//go:generate mockgen -source=login.go -destination=mock_login.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (*models.UserDB, string, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email" validate:"required"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password" validate:"required"`
}

// LoginUser is the account summary returned on login
// swagger:model LoginUser
type LoginUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// Bearer token, valid for one hour
	// default: JWT_TOKEN
	Token string `json:"token"`

	// Display name of the user
	// default: John Doe
	Username string `json:"username"`

	User LoginUser `json:"user"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticates by email and password, records the login time and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.LoginResponse "Token returned"
// @Failure 400 {object} handlers.ErrorResponse "Missing fields or invalid credentials"
// @Failure 403 {object} handlers.ErrorResponse "User is blocked"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if msg := decode(r, &req); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		user, token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				writeError(w, http.StatusBadRequest, msgInvalidCredentials)
			case errors.Is(err, services.ErrUserBlocked):
				writeError(w, http.StatusForbidden, msgUserBlocked)
			default:
				logger.Log.Errorw("login failed", "err", err)
				writeError(w, http.StatusInternalServerError, msgServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:    token,
			Username: user.Name,
			User: LoginUser{
				ID:    user.ID,
				Name:  user.Name,
				Email: user.Email,
			},
		})
	}
}
