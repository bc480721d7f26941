package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-management/internal/jwt"
	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=middlewares

// Tokener defines the token operations needed by the middleware.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetUserID(ctx context.Context, tokenString string) (int64, error)
}

// UserGetter loads the live account record for a token's user id.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.UserDB, error)
}

// Error messages returned by AuthMiddleware.
const (
	MsgUnauthorized  = "Unauthorized"
	MsgInvalidToken  = "Invalid token"
	MsgUserForbidden = "User blocked or deleted"
	MsgServerError   = "Server error"
)

// AuthMiddleware admits a request only when it carries a valid bearer token
// AND the account it names still exists and is not blocked. The account is
// re-read on every request, so blocking takes effect immediately for tokens
// that are still cryptographically valid. On success the account is stored
// in the request context (see GetUserFromContext).
func AuthMiddleware(tokener Tokener, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.Log.Infow("authorization failed", "err", err)
				writeJSONError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			userID, err := tokener.GetUserID(ctx, tokenString)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenMissing) {
					writeJSONError(w, http.StatusUnauthorized, MsgUnauthorized)
					return
				}
				logger.Log.Infow("authorization failed", "err", err)
				writeJSONError(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				logger.Log.Errorw("failed to load user for token", "user_id", userID, "err", err)
				writeJSONError(w, http.StatusInternalServerError, MsgServerError)
				return
			}
			if user == nil || user.IsBlocked() {
				logger.Log.Infow("token of blocked or deleted user", "user_id", userID)
				writeJSONError(w, http.StatusForbidden, MsgUserForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserToContext(ctx, user)))
		})
	}
}

type userContextKey struct{}

// SetUserToContext stores the authenticated user in ctx.
func SetUserToContext(ctx context.Context, user *models.UserDB) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext returns the authenticated user, or nil outside AuthMiddleware.
func GetUserFromContext(ctx context.Context) *models.UserDB {
	user, _ := ctx.Value(userContextKey{}).(*models.UserDB)
	return user
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
