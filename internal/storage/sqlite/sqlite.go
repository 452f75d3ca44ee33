package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"jobtrack/internal/domain/models"
	"jobtrack/internal/storage"

	"github.com/mattn/go-sqlite3"
	_ "github.com/mattn/go-sqlite3"
)

// opTimeout bounds every operation so a wedged database surfaces as
// storage.ErrUnavailable instead of hanging the request. Matches the
// _busy_timeout in the DSN.
const opTimeout = 5 * time.Second

type Storage struct {
	db *sql.DB
}

// New opens the account/tenant store. Foreign keys are enabled so that
// membership and application rows cascade with their owners.
func New(storagePath string) (*Storage, error) {
	const op = "storage.sqlite.New"
	db, err := sql.Open("sqlite3", storagePath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveUserWithTenant inserts the user, their default tenant and the admin
// membership in one transaction. All three rows commit together or none do.
// A duplicate email or username surfaces as storage.ErrUserExists.
func (s *Storage) SaveUserWithTenant(
	ctx context.Context,
	user *models.User,
	tenant *models.Tenant,
	membership *models.TenantMembership,
) error {
	const op = "storage.sqlite.SaveUserWithTenant"

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(opCtx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(opCtx,
		`INSERT INTO users (id, email, username, first_name, last_name, pass_hash, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.PassHash, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, classify(err))
	}

	_, err = tx.ExecContext(opCtx,
		`INSERT INTO tenants (id, name, created_at) VALUES (?, ?, ?)`,
		tenant.ID, tenant.Name, tenant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}

	_, err = tx.ExecContext(opCtx,
		`INSERT INTO tenant_users (id, user_id, tenant_id, role, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		membership.ID, membership.UserID, membership.TenantID,
		string(membership.Role), membership.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

// UserByEmail looks up a user by normalized email.
func (s *Storage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.sqlite.UserByEmail"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := s.db.QueryRowContext(opCtx,
		`SELECT id, email, username, first_name, last_name, pass_hash, is_active, created_at, updated_at
		 FROM users WHERE email = ?`, email)
	return scanUser(row, op)
}

// UserByID looks up a user by primary key.
func (s *Storage) UserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.sqlite.UserByID"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := s.db.QueryRowContext(opCtx,
		`SELECT id, email, username, first_name, last_name, pass_hash, is_active, created_at, updated_at
		 FROM users WHERE id = ?`, userID)
	return scanUser(row, op)
}

// TenantByID looks up a tenant by primary key.
func (s *Storage) TenantByID(ctx context.Context, tenantID string) (*models.Tenant, error) {
	const op = "storage.sqlite.TenantByID"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := s.db.QueryRowContext(opCtx,
		`SELECT id, name, created_at FROM tenants WHERE id = ?`, tenantID)

	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTenantNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return &t, nil
}

// Membership returns the membership linking a user to a tenant, if any.
func (s *Storage) Membership(ctx context.Context, userID, tenantID string) (*models.TenantMembership, error) {
	const op = "storage.sqlite.Membership"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := s.db.QueryRowContext(opCtx,
		`SELECT id, user_id, tenant_id, role, created_at
		 FROM tenant_users WHERE user_id = ? AND tenant_id = ?`, userID, tenantID)

	var m models.TenantMembership
	var role string
	err := row.Scan(&m.ID, &m.UserID, &m.TenantID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrMembershipNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}

	m.Role, err = models.ParseMembershipRole(role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// DeleteUser removes a user. Memberships cascade via foreign keys.
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	const op = "storage.sqlite.DeleteUser"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(opCtx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return nil
}

// DeleteTenant removes a tenant. Memberships and applications cascade.
func (s *Storage) DeleteTenant(ctx context.Context, tenantID string) error {
	const op = "storage.sqlite.DeleteTenant"
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(opCtx, `DELETE FROM tenants WHERE id = ?`, tenantID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTenantNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, op string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PassHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// classify folds timeouts and lock contention into ErrUnavailable so the
// request layer can answer 503 without inspecting driver internals.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return storage.ErrUnavailable
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
		return storage.ErrUnavailable
	}
	return err
}
