package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ecanteen/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// uniqueViolation maps the postgres 23505 error onto ErrDuplicate.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
	MarkVerified(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, fullname, email, password_hash, role, phone, address, avatar, email_verified, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(
		&u.ID, &u.Fullname, &u.Email, &u.PasswordHash, &u.Role,
		&u.Phone, &u.Address, &u.Avatar, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (fullname, email, password_hash, role, phone, address, avatar, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		user.Fullname,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.Address,
		user.Avatar,
		user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", uniqueViolation(err))
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	const q = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE email = $2`
	res, err := r.DB.ExecContext(ctx, q, hash, email)
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("user update password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user update password: %w", ErrNotFound)
	}
	return nil
}

func (r *userRepository) MarkVerified(ctx context.Context, email string) (*models.User, error) {
	q := `
		UPDATE users SET email_verified = TRUE, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, email))
	if err != nil {
		return nil, fmt.Errorf("user mark verified: %w", err)
	}
	return u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) (*models.User, error) {
	q := `
		UPDATE users SET
			fullname   = COALESCE($1, fullname),
			phone      = COALESCE($2, phone),
			address    = COALESCE($3, address),
			avatar     = COALESCE($4, avatar),
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, upd.Fullname, upd.Phone, upd.Address, upd.Avatar, id))
	if err != nil {
		return nil, fmt.Errorf("user update profile: %w", err)
	}
	return u, nil
}
