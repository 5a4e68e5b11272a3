package repository

import (
	"context"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/talkroom-app/backend/internal/common/db"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/talk/domain"
)

type Repository interface {
	Create(ctx context.Context, msg domain.Message) (domain.Message, error)
	ListThread(ctx context.Context, viewerID, otherID string) ([]domain.Message, error)
	RankFriends(ctx context.Context, viewerID, keyword string, limit, offset int) ([]domain.Friend, error)
	BulkCreate(ctx context.Context, msgs []domain.Message) (int64, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Create persists a message with a database-assigned timestamp. The stored
// sent_at is read back so callers see exactly what was committed.
func (r *PgRepository) Create(ctx context.Context, msg domain.Message) (domain.Message, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING sent_at`,
		string(msg.ID),
		msg.SenderID,
		msg.ReceiverID,
		msg.Body,
	)

	err := row.Scan(&msg.SentAt)
	if err := db.HandleQueryError(err, commonerrors.ErrMessageSendFailed, "create message", start); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// ListThread returns every message between the two users in either
// direction, oldest first. Equal timestamps are ordered by message id so
// the result is total and identical for (A,B) and (B,A).
func (r *PgRepository) ListThread(ctx context.Context, viewerID, otherID string) ([]domain.Message, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, sender_id, receiver_id, body, sent_at
		 FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2)
		    OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY sent_at ASC, id ASC`,
		viewerID,
		otherID,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, commonerrors.ErrThreadFetchFailed, "list thread", start)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.SentAt); err != nil {
			return nil, db.HandleQueryError(err, commonerrors.ErrThreadFetchFailed, "list thread", start)
		}
		msgs = append(msgs, m)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), commonerrors.ErrThreadFetchFailed, "list thread", start)
	}

	db.MeasureQueryDuration("list thread", start)
	return msgs, nil
}

// RankFriends aggregates, for every user other than the viewer, the latest
// message timestamp in each direction and takes the greater of the two.
// Users with no interaction rank last; ties fall back to username then id
// so the ordering is deterministic. The keyword filters usernames by
// case-insensitive substring; LIKE metacharacters in it match literally.
// Windowing happens after ordering.
func (r *PgRepository) RankFriends(ctx context.Context, viewerID, keyword string, limit, offset int) ([]domain.Friend, error) {
	start := time.Now()

	query := `
		SELECT u.id, u.username, u.avatar_path,
		       GREATEST(sent.last_at, recv.last_at) AS last_talk_at
		FROM users u
		LEFT JOIN (
			SELECT receiver_id AS user_id, MAX(sent_at) AS last_at
			FROM messages
			WHERE sender_id = $1
			GROUP BY receiver_id
		) sent ON sent.user_id = u.id
		LEFT JOIN (
			SELECT sender_id AS user_id, MAX(sent_at) AS last_at
			FROM messages
			WHERE receiver_id = $1
			GROUP BY sender_id
		) recv ON recv.user_id = u.id
		WHERE u.id <> $1
		  AND ($2 = '' OR u.username ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY GREATEST(sent.last_at, recv.last_at) DESC NULLS LAST, u.username ASC, u.id ASC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, viewerID, escapeLike(keyword), limit, offset)
	if err != nil {
		return nil, db.HandleQueryError(err, commonerrors.ErrFriendsRankFailed, "rank friends", start)
	}
	defer rows.Close()

	var friends []domain.Friend
	for rows.Next() {
		var f domain.Friend
		if err := rows.Scan(&f.UserID, &f.Username, &f.AvatarPath, &f.LastTalkAt); err != nil {
			return nil, db.HandleQueryError(err, commonerrors.ErrFriendsRankFailed, "rank friends", start)
		}
		friends = append(friends, f)
	}
	if rows.Err() != nil {
		return nil, db.HandleQueryError(rows.Err(), commonerrors.ErrFriendsRankFailed, "rank friends", start)
	}

	db.MeasureQueryDuration("rank friends", start)
	return friends, nil
}

// escapeLike neutralizes LIKE metacharacters so the keyword only ever
// matches as a literal substring. Usernames may contain underscores, which
// LIKE would otherwise treat as a single-character wildcard. The ranking
// query declares backslash as its escape character.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// BulkCreate inserts messages with explicit sent_at values. This is the
// seeding path only; the HTTP API never reaches it, so end users cannot
// supply timestamps.
func (r *PgRepository) BulkCreate(ctx context.Context, msgs []domain.Message) (int64, error) {
	start := time.Now()

	batch := &pgx.Batch{}
	for _, m := range msgs {
		batch.Queue(
			`INSERT INTO messages (id, sender_id, receiver_id, body, sent_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			string(m.ID),
			m.SenderID,
			m.ReceiverID,
			m.Body,
			m.SentAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int64
	for range msgs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, db.HandleExecError(err, "bulk create messages", start)
		}
		inserted += tag.RowsAffected()
	}

	db.MeasureQueryDuration("bulk create messages", start)
	return inserted, nil
}
