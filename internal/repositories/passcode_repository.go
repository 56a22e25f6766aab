package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ecanteen/internal/models"
)

type PasscodeRepository interface {
	// Supersede marks every unconsumed passcode of (email, purpose) consumed and
	// inserts p, atomically with respect to other calls for the same pair.
	Supersede(ctx context.Context, p *models.Passcode) error
	FindActive(ctx context.Context, email, code string, purpose models.PasscodePurpose, now time.Time) (*models.Passcode, error)
	FindLatest(ctx context.Context, email, code string, purpose models.PasscodePurpose) (*models.Passcode, error)
	IncrementAttempts(ctx context.Context, email string, purpose models.PasscodePurpose, now time.Time) (int, error)
	MarkConsumed(ctx context.Context, id int64) error
	MarkConsumedByCode(ctx context.Context, email, code string, purpose models.PasscodePurpose) error
	ConsumeActive(ctx context.Context, email string, purpose models.PasscodePurpose) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type passcodeRepository struct {
	DB *sql.DB
}

func NewPasscodeRepository(db *sql.DB) PasscodeRepository {
	return &passcodeRepository{DB: db}
}

const passcodeColumns = `id, email, code, purpose, created_at, expires_at, consumed, attempts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPasscode(row rowScanner) (*models.Passcode, error) {
	var (
		p       models.Passcode
		purpose string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Code, &purpose, &p.CreatedAt, &p.ExpiresAt, &p.Consumed, &p.Attempts); err != nil {
		return nil, err
	}
	p.Purpose = models.PasscodePurpose(purpose)
	return &p, nil
}

func (r *passcodeRepository) Supersede(ctx context.Context, p *models.Passcode) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("passcode supersede begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// serialises concurrent issues for the same pair until commit
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, p.Email+":"+string(p.Purpose)); err != nil {
		return fmt.Errorf("passcode supersede lock: %w", err)
	}

	const invalidate = `
		UPDATE passcodes SET consumed = TRUE
		WHERE email = $1 AND purpose = $2 AND consumed = FALSE
	`
	if _, err := tx.ExecContext(ctx, invalidate, p.Email, string(p.Purpose)); err != nil {
		return fmt.Errorf("passcode supersede invalidate: %w", err)
	}

	const insert = `
		INSERT INTO passcodes (email, code, purpose, created_at, expires_at, consumed, attempts)
		VALUES ($1, $2, $3, $4, $5, FALSE, 0)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, insert, p.Email, p.Code, string(p.Purpose), p.CreatedAt, p.ExpiresAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("passcode supersede insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("passcode supersede commit: %w", err)
	}
	p.Consumed = false
	p.Attempts = 0
	return nil
}

func (r *passcodeRepository) FindActive(ctx context.Context, email, code string, purpose models.PasscodePurpose, now time.Time) (*models.Passcode, error) {
	q := `
		SELECT ` + passcodeColumns + `
		FROM passcodes
		WHERE email = $1 AND code = $2 AND purpose = $3
		  AND consumed = FALSE AND expires_at > $4
		ORDER BY created_at DESC
		LIMIT 1
	`
	p, err := scanPasscode(r.DB.QueryRowContext(ctx, q, email, code, string(purpose), now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("passcode find active: %w", err)
	}
	return p, nil
}

// FindLatest ignores consumption and expiry. Only used to explain failed lookups in logs.
func (r *passcodeRepository) FindLatest(ctx context.Context, email, code string, purpose models.PasscodePurpose) (*models.Passcode, error) {
	q := `
		SELECT ` + passcodeColumns + `
		FROM passcodes
		WHERE email = $1 AND code = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	p, err := scanPasscode(r.DB.QueryRowContext(ctx, q, email, code, string(purpose)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("passcode find latest: %w", err)
	}
	return p, nil
}

// IncrementAttempts bumps the counter of the active passcode of the pair and
// returns the new value, or 0 when nothing is active.
func (r *passcodeRepository) IncrementAttempts(ctx context.Context, email string, purpose models.PasscodePurpose, now time.Time) (int, error) {
	const q = `
		UPDATE passcodes
		SET attempts = attempts + 1
		WHERE email = $1 AND purpose = $2 AND consumed = FALSE AND expires_at > $3
		RETURNING attempts
	`
	var attempts int
	if err := r.DB.QueryRowContext(ctx, q, email, string(purpose), now).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("passcode increment attempts: %w", err)
	}
	return attempts, nil
}

func (r *passcodeRepository) MarkConsumed(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE passcodes SET consumed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("passcode mark consumed: %w", err)
	}
	return nil
}

func (r *passcodeRepository) MarkConsumedByCode(ctx context.Context, email, code string, purpose models.PasscodePurpose) error {
	const q = `
		UPDATE passcodes SET consumed = TRUE
		WHERE email = $1 AND code = $2 AND purpose = $3 AND consumed = FALSE
	`
	if _, err := r.DB.ExecContext(ctx, q, email, code, string(purpose)); err != nil {
		return fmt.Errorf("passcode mark consumed by code: %w", err)
	}
	return nil
}

func (r *passcodeRepository) ConsumeActive(ctx context.Context, email string, purpose models.PasscodePurpose) error {
	const q = `
		UPDATE passcodes SET consumed = TRUE
		WHERE email = $1 AND purpose = $2 AND consumed = FALSE
	`
	if _, err := r.DB.ExecContext(ctx, q, email, string(purpose)); err != nil {
		return fmt.Errorf("passcode consume active: %w", err)
	}
	return nil
}

func (r *passcodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM passcodes WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("passcode delete expired: %w", err)
	}
	return res.RowsAffected()
}
