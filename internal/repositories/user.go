package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-management/internal/logger"
	"github.com/sbilibin2017/gw-user-management/internal/models"
)

// ErrDuplicateKey is returned when an insert violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	userColumns          = "id, name, email, password_hash, status, last_login, created_at"
	publicUserColumns    = "id, name, email, last_login, status"
	orderByLastLoginDesc = "ORDER BY last_login IS NULL, last_login DESC, id"
)

// TxGetter returns the request-scoped transaction, or nil.
type TxGetter func(ctx context.Context) *sqlx.Tx

func executor(ctx context.Context, db *sqlx.DB, txGetter TxGetter) sqlx.ExtContext {
	if txGetter != nil {
		if tx := txGetter(ctx); tx != nil {
			return tx
		}
	}
	return db
}

// logQuery logs query on a single line together with its args, result and error.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}

// UserReadRepository reads users.
type UserReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserReadRepository(db *sqlx.DB, txGetter TxGetter) *UserReadRepository {
	return &UserReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the user with id, or nil when it does not exist.
func (r *UserReadRepository) GetByID(ctx context.Context, id int64) (*models.UserDB, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

// GetByEmail returns the user registered with email, or nil when none is.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.getOne(ctx, query, email)
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, arg any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, arg)

	if errors.Is(err, sql.ErrNoRows) {
		logQuery(query, []any{arg}, nil, nil)
		return nil, nil
	}
	logQuery(query, []any{arg}, user.ID, err)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns every user, most recently logged in first and
// never-logged-in users last.
func (r *UserReadRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + publicUserColumns + ` FROM users ` + orderByLastLoginDesc

	users := []models.User{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &users, query)

	logQuery(query, nil, len(users), err)

	if err != nil {
		return nil, err
	}
	return users, nil
}

// UserWriteRepository mutates users.
type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new active user. A taken email yields ErrDuplicateKey.
func (r *UserWriteRepository) Save(ctx context.Context, name, email, passwordHash string) error {
	query := r.db.Rebind(`
		INSERT INTO users (name, email, password_hash, status, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, name, email, passwordHash, models.UserStatusActive)

	// The hash is not logged.
	logQuery(query, []any{name, email, models.UserStatusActive}, rowsAffected(res), err)

	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

// UpdateLastLogin stamps the current time as the user's last login.
func (r *UserWriteRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	query := r.db.Rebind(`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = ?`)

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, id)

	logQuery(query, []any{id}, rowsAffected(res), err)

	return err
}

// UpdateStatus sets status on every user whose id is in ids and returns
// the number of matched rows. An empty ids is a no-op.
func (r *UserWriteRepository) UpdateStatus(ctx context.Context, ids []int64, status models.UserStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE users SET status = ? WHERE id IN (?)`, status, ids)
	if err != nil {
		return 0, err
	}
	query = r.db.Rebind(query)

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	n := rowsAffected(res)

	logQuery(query, args, n, err)

	return n, err
}

// Delete removes every user whose id is in ids and returns the number of
// deleted rows. An empty ids is a no-op.
func (r *UserWriteRepository) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}
	query = r.db.Rebind(query)

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	n := rowsAffected(res)

	logQuery(query, args, n, err)

	return n, err
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return n
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return false
}
