package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const userColumns = "id, email, name, stripe_customer_id, has_membership, membership_paused"

// UserTx is the set of users operations available inside a transaction.
// Lookups take a FOR UPDATE lock on the returned row until the transaction ends.
type UserTx interface {
	GetUserForUpdate(ctx context.Context, id int64) (User, error)
	GetUserByCustomerForUpdate(ctx context.Context, customerID string) (User, error)
	UpdateFields(ctx context.Context, u User, fields []Field) error
}

// Reconcile applies p to u and persists only the changed columns in a single
// write. It returns the changed fields; an empty result means nothing was written.
func Reconcile(ctx context.Context, tx UserTx, u *User, p UserPatch) ([]Field, error) {
	changed := p.Apply(u)
	if len(changed) == 0 {
		return nil, nil
	}
	if err := tx.UpdateFields(ctx, *u, changed); err != nil {
		return nil, err
	}
	return changed, nil
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists users in Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx UserTx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// no-op after commit
	defer func() { _ = sqlTx.Rollback() }()

	if err := fn(userTx{q: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetUser returns the user with id without locking.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// CreateUser inserts a user with no billing state.
func (s *Store) CreateUser(ctx context.Context, email, name string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"INSERT INTO users (email, name) VALUES ($1, $2) RETURNING "+userColumns, email, name))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return User{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return User{}, err
	}
	return u, nil
}

// DeleteUser removes a user; used by tests and account deletion.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type userTx struct {
	q queryer
}

func (t userTx) GetUserForUpdate(ctx context.Context, id int64) (User, error) {
	return scanUser(t.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id))
}

func (t userTx) GetUserByCustomerForUpdate(ctx context.Context, customerID string) (User, error) {
	if customerID == "" {
		return User{}, ErrUserNotFound
	}
	return scanUser(t.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE stripe_customer_id = $1 ORDER BY id LIMIT 1 FOR UPDATE", customerID))
}

func (t userTx) UpdateFields(ctx context.Context, u User, fields []Field) error {
	if len(fields) == 0 {
		return nil
	}
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		switch f {
		case FieldStripeCustomerID:
			args = append(args, u.StripeCustomerID)
		case FieldHasMembership:
			args = append(args, u.HasMembership)
		case FieldMembershipPaused:
			args = append(args, u.MembershipPaused)
		default:
			return fmt.Errorf("unknown user field %q", f)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f, len(args)))
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, u.ID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.StripeCustomerID, &u.HasMembership, &u.MembershipPaused)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
