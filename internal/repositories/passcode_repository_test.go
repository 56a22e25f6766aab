package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"ecanteen/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestPasscodeSupersedeRunsInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	now := time.Now()
	p := &models.Passcode{
		Email:     "a@x.com",
		Code:      "123456",
		Purpose:   models.PurposePasswordReset,
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("a@x.com:password_reset").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE passcodes SET consumed = TRUE`).
		WithArgs("a@x.com", "password_reset").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO passcodes`).
		WithArgs("a@x.com", "123456", "password_reset", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	require.NoError(t, repo.Supersede(context.Background(), p))
	require.Equal(t, int64(7), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasscodeSupersedeRollsBackOnInsertError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE passcodes SET consumed = TRUE`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO passcodes`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Supersede(context.Background(), &models.Passcode{Email: "a@x.com", Purpose: models.PurposeEmailVerification})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasscodeFindActive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "code", "purpose", "created_at", "expires_at", "consumed", "attempts"}).
		AddRow(3, "a@x.com", "654321", "email_verification", now, now.Add(time.Minute), false, 1)
	mock.ExpectQuery(`consumed = FALSE AND expires_at > \$4`).
		WithArgs("a@x.com", "654321", "email_verification", now).
		WillReturnRows(rows)

	p, err := repo.FindActive(context.Background(), "a@x.com", "654321", models.PurposeEmailVerification, now)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, int64(3), p.ID)
	require.Equal(t, models.PurposeEmailVerification, p.Purpose)
	require.Equal(t, 1, p.Attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasscodeFindActiveMissReturnsNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	mock.ExpectQuery(`FROM passcodes`).WillReturnError(sql.ErrNoRows)

	p, err := repo.FindActive(context.Background(), "a@x.com", "000000", models.PurposePasswordReset, time.Now())
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestPasscodeIncrementAttemptsWithoutActiveRecord(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	mock.ExpectQuery(`SET attempts = attempts \+ 1`).WillReturnRows(sqlmock.NewRows([]string{"attempts"}))

	n, err := repo.IncrementAttempts(context.Background(), "a@x.com", models.PurposePasswordReset, time.Now())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPasscodeDeleteExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPasscodeRepository(db)

	cutoff := time.Now()
	mock.ExpectExec(`DELETE FROM passcodes WHERE expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}
