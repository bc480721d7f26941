package services

import (
	"context"
	"errors"
	"slices"

	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
)

//go:generate mockgen -source=user.go -destination=mock_user.go -package=services

// ErrSelfAction is returned when a block or delete batch contained the
// caller's own id. The batch has already been applied.
var ErrSelfAction = errors.New("caller blocked or deleted own account")

// UserLister lists users.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// UserBulkWriter applies one change to a set of users in a single statement.
type UserBulkWriter interface {
	UpdateStatus(ctx context.Context, ids []int64, status models.UserStatus) (int64, error)
	Delete(ctx context.Context, ids []int64) (int64, error)
}

// UserService implements the administration operations.
type UserService struct {
	lister UserLister
	writer UserBulkWriter
}

// NewUserService creates a new UserService instance.
func NewUserService(lister UserLister, writer UserBulkWriter) *UserService {
	return &UserService{lister: lister, writer: writer}
}

// List returns the public projection of all users.
func (svc *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := svc.lister.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, err
	}
	return users, nil
}

// Block blocks every user in ids. When callerID is among them the change is
// still applied but ErrSelfAction is returned.
func (svc *UserService) Block(ctx context.Context, callerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	n, err := svc.writer.UpdateStatus(ctx, ids, models.UserStatusBlocked)
	if err != nil {
		logger.Log.Errorw("failed to block users", "ids", ids, "err", err)
		return err
	}
	logger.Log.Infow("users blocked", "caller_id", callerID, "ids", ids, "affected", n)

	return selfCheck(callerID, ids)
}

// Unblock activates every user in ids. Unblocking oneself is allowed.
func (svc *UserService) Unblock(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	n, err := svc.writer.UpdateStatus(ctx, ids, models.UserStatusActive)
	if err != nil {
		logger.Log.Errorw("failed to unblock users", "ids", ids, "err", err)
		return err
	}
	logger.Log.Infow("users unblocked", "ids", ids, "affected", n)

	return nil
}

// Delete removes every user in ids. When callerID is among them the rows are
// still removed but ErrSelfAction is returned.
func (svc *UserService) Delete(ctx context.Context, callerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	n, err := svc.writer.Delete(ctx, ids)
	if err != nil {
		logger.Log.Errorw("failed to delete users", "ids", ids, "err", err)
		return err
	}
	logger.Log.Infow("users deleted", "caller_id", callerID, "ids", ids, "affected", n)

	return selfCheck(callerID, ids)
}

func selfCheck(callerID int64, ids []int64) error {
	if slices.Contains(ids, callerID) {
		return ErrSelfAction
	}
	return nil
}
