package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/database"
)

var (
	// ErrDuplicate is returned by Create when the username or email is taken.
	ErrDuplicate = errors.New("duplicate username or email")
	// ErrInsufficientBalance is returned by ApplyDelta when a balance would
	// drop below zero.
	ErrInsufficientBalance = errors.New("balance cannot go below zero")
	// ErrRoleChanged is returned by UpdateRole when the target no longer holds
	// the expected role.
	ErrRoleChanged = errors.New("role changed concurrently")
)

const accountColumns = `id, username, email, password_hash, display_name, tokens, points, role, created_at, updated_at`

const summaryColumns = `id, username, display_name, tokens, points, role, created_at`

// AccountRepo provides data access for the accounts table using sqlx.
// Queries use ? placeholders and are rebound for the active driver.
type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo { return &AccountRepo{db: db} }

// Create inserts a new account row and returns its id. CreatedAt and
// UpdatedAt must be set by the caller.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) (int64, error) {
	q := r.db.Rebind(`INSERT INTO accounts (username, email, password_hash, display_name, tokens, points, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, q,
		a.Username, a.Email, a.PasswordHash, a.DisplayName, a.Tokens, a.Points, a.Role, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return a.ID, nil
}

// GetByID fetches a full account row or sql.ErrNoRows.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	var a entity.Account
	q := r.db.Rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`)
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByUsername fetches by exact username or sql.ErrNoRows.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var a entity.Account
	q := r.db.Rebind(`SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`)
	if err := r.db.GetContext(ctx, &a, q, username); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateDisplayName sets display_name and returns the updated row.
func (r *AccountRepo) UpdateDisplayName(ctx context.Context, id int64, name string, now time.Time) (*entity.Account, error) {
	var a entity.Account
	q := r.db.Rebind(`UPDATE accounts SET display_name = ?, updated_at = ? WHERE id = ? RETURNING ` + accountColumns)
	if err := r.db.GetContext(ctx, &a, q, name, now, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateRole sets role only if the account still holds expected. Returns
// sql.ErrNoRows when the account is gone and ErrRoleChanged when the guard
// fails.
func (r *AccountRepo) UpdateRole(ctx context.Context, id int64, expected, role entity.Role, now time.Time) (*entity.Account, error) {
	var a entity.Account
	q := r.db.Rebind(`UPDATE accounts SET role = ?, updated_at = ? WHERE id = ? AND role = ? RETURNING ` + accountColumns)
	err := r.db.GetContext(ctx, &a, q, role, now, id, expected)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update role: %w", err)
	}
	ok, existsErr := exists(ctx, r.db, id)
	if existsErr != nil {
		return nil, existsErr
	}
	if ok {
		return nil, ErrRoleChanged
	}
	return nil, sql.ErrNoRows
}

// ApplyDelta adds the deltas to tokens and points in one guarded statement
// evaluated by the database, so concurrent callers never lose updates and
// neither balance can become negative.
func (r *AccountRepo) ApplyDelta(ctx context.Context, id, tokensDelta, pointsDelta int64, now time.Time) (*entity.Account, error) {
	return applyDelta(ctx, r.db, id, tokensDelta, pointsDelta, now)
}

// ApplyDeltaTx is ApplyDelta inside the caller's transaction.
func (r *AccountRepo) ApplyDeltaTx(ctx context.Context, tx *sqlx.Tx, id, tokensDelta, pointsDelta int64, now time.Time) (*entity.Account, error) {
	return applyDelta(ctx, tx, id, tokensDelta, pointsDelta, now)
}

func applyDelta(ctx context.Context, ext sqlx.ExtContext, id, tokensDelta, pointsDelta int64, now time.Time) (*entity.Account, error) {
	var a entity.Account
	q := ext.Rebind(`UPDATE accounts
		SET tokens = tokens + ?, points = points + ?, updated_at = ?
		WHERE id = ? AND tokens + ? >= 0 AND points + ? >= 0
		RETURNING ` + accountColumns)
	err := sqlx.GetContext(ctx, ext, &a, q, tokensDelta, pointsDelta, now, id, tokensDelta, pointsDelta)
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("apply balance delta: %w", err)
	}
	ok, existsErr := exists(ctx, ext, id)
	if existsErr != nil {
		return nil, existsErr
	}
	if ok {
		return nil, ErrInsufficientBalance
	}
	return nil, sql.ErrNoRows
}

func exists(ctx context.Context, ext sqlx.ExtContext, id int64) (bool, error) {
	var one int
	err := sqlx.GetContext(ctx, ext, &one, ext.Rebind(`SELECT 1 FROM accounts WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check account: %w", err)
	}
	return true, nil
}

// Search returns accounts whose username contains substr, case-insensitive,
// ordered by username.
func (r *AccountRepo) Search(ctx context.Context, substr string, limit int) ([]entity.Summary, error) {
	pattern := "%" + escapeLike(strings.ToLower(substr)) + "%"
	q := r.db.Rebind(`SELECT ` + summaryColumns + ` FROM accounts
		WHERE LOWER(username) LIKE ? ESCAPE '\'
		ORDER BY username LIMIT ?`)
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, q, pattern, limit); err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return out, nil
}

// List returns accounts ordered by username.
func (r *AccountRepo) List(ctx context.Context, limit int) ([]entity.Summary, error) {
	q := r.db.Rebind(`SELECT ` + summaryColumns + ` FROM accounts ORDER BY username LIMIT ?`)
	out := []entity.Summary{}
	if err := r.db.SelectContext(ctx, &out, q, limit); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// PromoteOwner sets role=owner on username if it exists and is not already
// owner. Reports whether a row changed.
func (r *AccountRepo) PromoteOwner(ctx context.Context, username string, now time.Time) (bool, error) {
	q := r.db.Rebind(`UPDATE accounts SET role = ?, updated_at = ? WHERE username = ? AND role <> ?`)
	res, err := r.db.ExecContext(ctx, q, entity.RoleOwner, now, username, entity.RoleOwner)
	if err != nil {
		return false, fmt.Errorf("promote owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
