package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
	"github.com/sbilibin2017/gw-user-management/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=services

// Error variables
var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserBlocked        = errors.New("user is blocked")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, name, email, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64) error
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID int64) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
	cost   int
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
		cost:   bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (svc *AuthService) WithHashCost(cost int) *AuthService {
	svc.cost = cost
	return svc
}

// Register stores a new active user. No token is issued.
func (svc *AuthService) Register(ctx context.Context, name, email, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), svc.cost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.Save(ctx, name, email, string(hashedPassword)); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			logger.Log.Infow("email already registered", "email", email)
			return ErrDuplicateEmail
		}
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	return nil
}

// Login authenticates a user, stamps last_login and returns the user
// together with a fresh token. A blocked account yields ErrUserBlocked
// whatever the password.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.UserDB, string, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, "", err
	}
	if user == nil {
		logger.Log.Infow("login for unknown email", "email", email)
		return nil, "", ErrInvalidCredentials
	}

	if user.IsBlocked() {
		logger.Log.Infow("login for blocked user", "user_id", user.ID)
		return nil, "", ErrUserBlocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid password", "user_id", user.ID)
		return nil, "", ErrInvalidCredentials
	}

	if err := svc.writer.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.Log.Errorw("failed to update last login", "user_id", user.ID, "err", err)
		return nil, "", err
	}

	token, err := svc.jwt.Generate(ctx, user.ID)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return nil, "", err
	}

	return user, token, nil
}
