package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tours-service/internal/domain"
)

// PasswordResetRepository manages the reset-token columns on a user record. Writes touch
// only those columns, so the rest of the record is not re-validated.
type PasswordResetRepository interface {
	SetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	Clear(ctx context.Context, userID string) error
	GetUserByToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository constructs repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) SetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const query = `
        UPDATE users SET password_reset_token_hash=$1, password_reset_expires_at=$2
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, tokenHash, expiresAt, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *passwordResetRepository) Clear(ctx context.Context, userID string) error {
	const query = `
        UPDATE users SET password_reset_token_hash=NULL, password_reset_expires_at=NULL
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *passwordResetRepository) GetUserByToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
        FROM users WHERE password_reset_token_hash=$1 AND password_reset_expires_at > $2`
	return scanUser(r.pool.QueryRow(ctx, query, tokenHash, now))
}
