package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Error messages shared by the handlers.
const (
	msgInvalidBody        = "Invalid request body"
	msgFieldsRequired     = "All fields required"
	msgEmailExists        = "Email already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUserBlocked        = "User is blocked"
	msgUserForbidden      = "User blocked or deleted"
	msgUnauthorized       = "Unauthorized"
	msgServerError        = "Server error"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every failed request
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Server error
	Error string `json:"error"`
}

// MessageResponse is the body of a successful mutation
// swagger:model MessageResponse
type MessageResponse struct {
	// Success message
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decode reads a JSON body into req and checks its validate tags.
// It returns the message to report on failure, or "" when req is usable.
func decode(r *http.Request, req any) string {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return msgInvalidBody
	}
	if err := validate.Struct(req); err != nil {
		return msgFieldsRequired
	}
	return ""
}
