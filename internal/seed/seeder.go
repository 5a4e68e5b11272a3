package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/observability/metrics"
	talkdomain "github.com/talkroom-app/backend/internal/talk/domain"
	talkrepo "github.com/talkroom-app/backend/internal/talk/repository"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

const usersPerBatch = 500

var sampleBodies = []string{
	"hey, how are you?",
	"long time no see",
	"did you get my last message?",
	"let's catch up this week",
	"thanks for the help yesterday",
	"are you around tomorrow?",
}

type SeederDeps struct {
	UserRepo    userrepo.Repository
	TalkRepo    talkrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	Log         *logger.Logger
}

// Seeder fills the database with synthetic users and a backdated talk
// history so the friends ranking has realistic data to order.
type Seeder struct {
	userRepo    userrepo.Repository
	talkRepo    talkrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	log         *logger.Logger
	rng         *rand.Rand
}

func NewSeeder(deps SeederDeps) *Seeder {
	return &Seeder{
		userRepo:    deps.UserRepo,
		talkRepo:    deps.TalkRepo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		log:         deps.Log,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type Result struct {
	UsersCreated    int64
	MessagesCreated int64
	AdminID         string
}

// Run creates the admin user when missing, bulk-inserts userCount demo
// users sharing one password hash, then writes one sent and one received
// message between the admin and every other user with timestamps spread
// over the past year.
func (s *Seeder) Run(ctx context.Context, adminUsername, demoPassword string, userCount int) (Result, error) {
	var result Result

	passwordHash, err := s.hasher.Hash(demoPassword)
	if err != nil {
		return result, fmt.Errorf("failed to hash demo password: %w", err)
	}

	adminID, err := s.ensureAdmin(ctx, adminUsername, passwordHash)
	if err != nil {
		return result, err
	}
	result.AdminID = adminID

	created, err := s.createDemoUsers(ctx, passwordHash, userCount)
	if err != nil {
		return result, err
	}
	result.UsersCreated = created
	metrics.SeededRowsTotal.WithLabelValues("users").Add(float64(created))

	messages, err := s.createDemoMessages(ctx, userdomain.ID(adminID))
	if err != nil {
		return result, err
	}
	result.MessagesCreated = messages
	metrics.SeededRowsTotal.WithLabelValues("messages").Add(float64(messages))

	s.log.WithFields(ctx, logger.Fields{
		"users_created":    result.UsersCreated,
		"messages_created": result.MessagesCreated,
		"action":           "seed_complete",
	}).Info("demo seed complete")

	return result, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, username, passwordHash string) (string, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		s.log.Infof("admin user %q already exists", username)
		return string(existing.ID), nil
	}
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		return "", fmt.Errorf("failed to look up admin user: %w", err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return "", err
	}

	admin := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("failed to create admin user: %w", err)
	}

	s.log.Infof("created admin user %q", username)
	return id, nil
}

func (s *Seeder) createDemoUsers(ctx context.Context, passwordHash string, count int) (int64, error) {
	var created int64

	for offset := 0; offset < count; offset += usersPerBatch {
		batchSize := usersPerBatch
		if offset+batchSize > count {
			batchSize = count - offset
		}

		users := make([]userdomain.User, 0, batchSize)
		for i := 0; i < batchSize; i++ {
			id, err := s.idGenerator.NewID()
			if err != nil {
				return created, err
			}

			n := offset + i + 1
			users = append(users, userdomain.User{
				ID:           userdomain.ID(id),
				Username:     fmt.Sprintf("user%d", n),
				Email:        fmt.Sprintf("user%d@example.com", n),
				PasswordHash: passwordHash,
			})
		}

		inserted, err := s.userRepo.BulkCreate(ctx, users)
		if err != nil {
			return created, fmt.Errorf("failed to bulk create users: %w", err)
		}
		created += inserted
	}

	return created, nil
}

func (s *Seeder) createDemoMessages(ctx context.Context, adminID userdomain.ID) (int64, error) {
	ids, err := s.userRepo.ListIDs(ctx, adminID)
	if err != nil {
		return 0, fmt.Errorf("failed to list user ids: %w", err)
	}

	now := time.Now()
	var created int64

	batch := make([]talkdomain.Message, 0, 2*usersPerBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := s.talkRepo.BulkCreate(ctx, batch)
		created += inserted
		batch = batch[:0]
		if err != nil {
			return fmt.Errorf("failed to bulk create messages: %w", err)
		}
		return nil
	}

	for _, other := range ids {
		sent, err := s.randomMessage(string(adminID), string(other), now)
		if err != nil {
			return created, err
		}
		received, err := s.randomMessage(string(other), string(adminID), now)
		if err != nil {
			return created, err
		}
		batch = append(batch, sent, received)

		if len(batch) >= 2*usersPerBatch {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}

	if err := flush(); err != nil {
		return created, err
	}
	return created, nil
}

func (s *Seeder) randomMessage(senderID, receiverID string, now time.Time) (talkdomain.Message, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return talkdomain.Message{}, err
	}

	backdate := time.Duration(s.rng.Int63n(int64(365 * 24 * time.Hour)))

	return talkdomain.Message{
		ID:         talkdomain.ID(id),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       sampleBodies[s.rng.Intn(len(sampleBodies))],
		SentAt:     now.Add(-backdate),
	}, nil
}
