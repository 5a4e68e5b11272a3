package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/talkroom-app/backend/internal/talk/domain"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

// These tests run against a real database because the ranking and thread
// ordering guarantees live in SQL. Set TEST_DATABASE_URL to a database
// with the migrations applied; its users, messages and refresh_tokens
// tables are truncated before every test.

func setupIntegration(t *testing.T) (*PgRepository, *userrepo.PgRepository) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, `TRUNCATE messages, refresh_tokens, users CASCADE`); err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	return NewPgRepository(pool), userrepo.NewPgRepository(pool)
}

func seedUser(t *testing.T, users *userrepo.PgRepository, username string) string {
	t.Helper()

	id := uuid.NewString()
	err := users.Create(context.Background(), userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return id
}

func seedMessage(t *testing.T, talks *PgRepository, senderID, receiverID string, sentAt time.Time) {
	t.Helper()

	inserted, err := talks.BulkCreate(context.Background(), []domain.Message{{
		ID:         domain.ID(uuid.NewString()),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       "hello",
		SentAt:     sentAt,
	}})
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("seed message: inserted %d rows, want 1", inserted)
	}
}

func TestRankFriendsOrdersByLatestContact(t *testing.T) {
	talks, users := setupIntegration(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	viewer := seedUser(t, users, "viewer")
	alice := seedUser(t, users, "alice")
	bella := seedUser(t, users, "bella")
	seedUser(t, users, "carol")
	seedUser(t, users, "dave")

	// Viewer wrote to alice two hours ago; bella wrote to the viewer one
	// hour ago. Both directions must count, so bella ranks first. Carol
	// and dave never talked to anyone and go last, in username order.
	seedMessage(t, talks, viewer, alice, now.Add(-2*time.Hour))
	seedMessage(t, talks, bella, viewer, now.Add(-time.Hour))

	friends, err := talks.RankFriends(ctx, viewer, "", 10, 0)
	if err != nil {
		t.Fatalf("RankFriends returned error: %v", err)
	}

	wantOrder := []string{"bella", "alice", "carol", "dave"}
	if len(friends) != len(wantOrder) {
		t.Fatalf("got %d friends, want %d", len(friends), len(wantOrder))
	}
	for i, want := range wantOrder {
		if friends[i].Username != want {
			t.Errorf("position %d: got %s, want %s", i, friends[i].Username, want)
		}
	}

	if friends[0].LastTalkAt == nil || friends[1].LastTalkAt == nil {
		t.Fatal("contacted friends must carry a last talk timestamp")
	}
	if !friends[0].LastTalkAt.After(*friends[1].LastTalkAt) {
		t.Error("bella talked more recently than alice but is not ranked above her")
	}
	if friends[2].LastTalkAt != nil || friends[3].LastTalkAt != nil {
		t.Error("never-contacted users must have a nil last talk timestamp")
	}
	for _, f := range friends {
		if f.UserID == viewer {
			t.Error("viewer must not appear in their own friends ranking")
		}
	}

	// Windowing applies after ordering.
	page, err := talks.RankFriends(ctx, viewer, "", 2, 1)
	if err != nil {
		t.Fatalf("RankFriends with offset returned error: %v", err)
	}
	if len(page) != 2 || page[0].Username != "alice" || page[1].Username != "carol" {
		t.Errorf("offset window: got %+v, want [alice carol]", page)
	}
}

func TestRankFriendsKeyword(t *testing.T) {
	talks, users := setupIntegration(t)
	ctx := context.Background()

	viewer := seedUser(t, users, "viewer")
	seedUser(t, users, "abc")
	seedUser(t, users, "axc")
	seedUser(t, users, "a_c")

	// Underscore is a LIKE wildcard; here it must match only itself.
	friends, err := talks.RankFriends(ctx, viewer, "a_c", 10, 0)
	if err != nil {
		t.Fatalf("RankFriends returned error: %v", err)
	}
	if len(friends) != 1 || friends[0].Username != "a_c" {
		t.Errorf("keyword a_c: got %+v, want exactly [a_c]", friends)
	}

	friends, err = talks.RankFriends(ctx, viewer, "AB", 10, 0)
	if err != nil {
		t.Fatalf("RankFriends returned error: %v", err)
	}
	if len(friends) != 1 || friends[0].Username != "abc" {
		t.Errorf("keyword AB: got %+v, want exactly [abc]", friends)
	}
}

func TestListThreadSymmetricAndOrdered(t *testing.T) {
	talks, users := setupIntegration(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	viewer := seedUser(t, users, "viewer")
	alice := seedUser(t, users, "alice")
	bella := seedUser(t, users, "bella")

	seedMessage(t, talks, viewer, alice, now.Add(-3*time.Hour))
	seedMessage(t, talks, alice, viewer, now.Add(-2*time.Hour))
	seedMessage(t, talks, viewer, alice, now.Add(-time.Hour))
	// Unrelated pair, must stay out of the thread.
	seedMessage(t, talks, bella, viewer, now.Add(-30*time.Minute))

	forward, err := talks.ListThread(ctx, viewer, alice)
	if err != nil {
		t.Fatalf("ListThread(viewer, alice) returned error: %v", err)
	}
	backward, err := talks.ListThread(ctx, alice, viewer)
	if err != nil {
		t.Fatalf("ListThread(alice, viewer) returned error: %v", err)
	}

	if len(forward) != 3 {
		t.Fatalf("got %d messages, want 3", len(forward))
	}
	if len(backward) != len(forward) {
		t.Fatalf("thread is not symmetric: %d vs %d messages", len(forward), len(backward))
	}
	for i := range forward {
		if forward[i].ID != backward[i].ID {
			t.Errorf("position %d: thread differs between directions", i)
		}
	}
	for i := 1; i < len(forward); i++ {
		if forward[i].SentAt.Before(forward[i-1].SentAt) {
			t.Errorf("position %d: sent_at decreased within the thread", i)
		}
	}
	for _, m := range forward {
		if m.SenderID == bella || m.ReceiverID == bella {
			t.Error("thread leaked a message from an unrelated pair")
		}
	}
}
