package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/talkroom-app/backend/internal/auth/domain"
	"github.com/talkroom-app/backend/internal/common/db"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(ctx context.Context, token domain.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	CountByUserID(ctx context.Context, userID string) (int, error)
	DeleteOldestByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PgRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgRefreshTokenRepository(pool *pgxpool.Pool) *PgRefreshTokenRepository {
	return &PgRefreshTokenRepository{pool: pool}
}

func (r *PgRefreshTokenRepository) Create(ctx context.Context, token domain.RefreshToken) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO refresh_tokens (id, token_hash, user_id, expires_at) VALUES ($1, $2, $3, $4)`,
		token.ID,
		token.TokenHash,
		token.UserID,
		token.ExpiresAt,
	)
	return db.HandleExecError(err, "create refresh token", start)
}

func (r *PgRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (domain.RefreshToken, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, token_hash, user_id, expires_at, created_at FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	)

	var token domain.RefreshToken
	err := row.Scan(&token.ID, &token.TokenHash, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err := db.HandleQueryError(err, ErrRefreshTokenNotFound, "find refresh token", start); err != nil {
		return domain.RefreshToken{}, err
	}
	return token, nil
}

func (r *PgRefreshTokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE token_hash = $1`,
		tokenHash,
	)
	if err := db.HandleExecError(err, "delete refresh token", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}

func (r *PgRefreshTokenRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`,
		userID,
	)

	var count int
	err := row.Scan(&count)
	if err := db.HandleQueryError(err, nil, "count refresh tokens", start); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgRefreshTokenRepository) DeleteOldestByUserID(ctx context.Context, userID string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens
		 WHERE id = (
			SELECT id FROM refresh_tokens
			WHERE user_id = $1
			ORDER BY created_at ASC
			LIMIT 1
		 )`,
		userID,
	)
	return db.HandleExecError(err, "delete oldest refresh token", start)
}

func (r *PgRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`,
		before,
	)
	if err := db.HandleExecError(err, "delete expired refresh tokens", start); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
