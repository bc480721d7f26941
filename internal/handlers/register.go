package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/services"
)

//go:generate mockgen -source=register.go -destination=mock_register.go -package=handlers

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, name, email, password string) error
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Display name
	// required: true
	// default: John Doe
	Name string `json:"name" validate:"required"`

	// Email, used as the login key
	// required: true
	// default: john@example.com
	Email string `json:"email" validate:"required"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password" validate:"required"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates an active account. The email must be unused. No token is issued; log in separately.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.MessageResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Missing fields or email already exists"
// @Failure 500 {object} handlers.ErrorResponse "Server error"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if msg := decode(r, &req); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		err := svc.Register(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateEmail):
				writeError(w, http.StatusBadRequest, msgEmailExists)
			default:
				logger.Log.Errorw("registration failed", "err", err)
				writeError(w, http.StatusInternalServerError, msgServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, MessageResponse{
			Message: "User registered successfully",
		})
	}
}
