package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/talkroom-app/backend/internal/common/db"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/user/domain"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateUsername(ctx context.Context, id domain.ID, username string) error
	UpdateEmail(ctx context.Context, id domain.ID, email string) error
	UpdatePasswordHash(ctx context.Context, id domain.ID, passwordHash string) error
	UpdateAvatarPath(ctx context.Context, id domain.ID, avatarPath string) error
	BulkCreate(ctx context.Context, users []domain.User) (int64, error)
	ListIDs(ctx context.Context, exclude domain.ID) ([]domain.ID, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
	)
	if isUniqueViolation(err) {
		db.MeasureQueryDuration("create user", start)
		return commonerrors.ErrUsernameTaken
	}
	return db.HandleExecError(err, "create user", start)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, avatar_path, created_at FROM users WHERE id = $1`,
		string(id),
	)
	return scanUser(row, "find user by id", start)
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, avatar_path, created_at FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row, "find user by username", start)
}

func (r *PgRepository) UpdateUsername(ctx context.Context, id domain.ID, username string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET username = $2 WHERE id = $1`,
		string(id),
		username,
	)
	if isUniqueViolation(err) {
		db.MeasureQueryDuration("update username", start)
		return commonerrors.ErrUsernameTaken
	}
	if err := db.HandleExecError(err, "update username", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) UpdateEmail(ctx context.Context, id domain.ID, email string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET email = $2 WHERE id = $1`,
		string(id),
		email,
	)
	if err := db.HandleExecError(err, "update email", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) UpdatePasswordHash(ctx context.Context, id domain.ID, passwordHash string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`,
		string(id),
		passwordHash,
	)
	if err := db.HandleExecError(err, "update password", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

func (r *PgRepository) UpdateAvatarPath(ctx context.Context, id domain.ID, avatarPath string) error {
	start := time.Now()
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE users SET avatar_path = $2 WHERE id = $1`,
		string(id),
		avatarPath,
	)
	if err := db.HandleExecError(err, "update avatar", start); err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return commonerrors.ErrUserNotFound
	}
	return nil
}

// BulkCreate inserts users in one batch, skipping username conflicts. Only
// the demo seeder uses this path.
func (r *PgRepository) BulkCreate(ctx context.Context, users []domain.User) (int64, error) {
	start := time.Now()

	batch := &pgx.Batch{}
	for _, u := range users {
		batch.Queue(
			`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (username) DO NOTHING`,
			string(u.ID),
			u.Username,
			u.Email,
			u.PasswordHash,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range users {
		tag, err := results.Exec()
		if err != nil {
			return inserted, db.HandleExecError(err, "bulk create users", start)
		}
		inserted += tag.RowsAffected()
	}

	db.MeasureQueryDuration("bulk create users", start)
	return inserted, nil
}

func (r *PgRepository) ListIDs(ctx context.Context, exclude domain.ID) ([]domain.ID, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id FROM users WHERE id <> $1 ORDER BY created_at ASC`,
		string(exclude),
	)
	if err != nil {
		return nil, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "list user ids", start)
	}
	defer rows.Close()

	var ids []domain.ID
	for rows.Next() {
		var id domain.ID
		if err := rows.Scan(&id); err != nil {
			return nil, db.HandleQueryError(err, commonerrors.ErrUserNotFound, "list user ids", start)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), commonerrors.ErrUserNotFound, "list user ids", start)
	}

	db.MeasureQueryDuration("list user ids", start)
	return ids, nil
}

func scanUser(row pgx.Row, operation string, start time.Time) (domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.AvatarPath, &user.CreatedAt)
	if err := db.HandleQueryError(err, commonerrors.ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
