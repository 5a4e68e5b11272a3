package main

import (
	"context"
	"os"

	"github.com/talkroom-app/backend/internal/common/config"
	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	"github.com/talkroom-app/backend/internal/common/db"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/seed"
	talkrepo "github.com/talkroom-app/backend/internal/talk/repository"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "talkroom-seed", os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadSeed()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	seeder := seed.NewSeeder(seed.SeederDeps{
		UserRepo:    userrepo.NewPgRepository(pool),
		TalkRepo:    talkrepo.NewPgRepository(pool),
		Hasher:      commoncrypto.NewBcryptHasher(),
		IDGenerator: commoncrypto.NewUUIDGenerator(),
		Log:         log,
	})

	result, err := seeder.Run(context.Background(), cfg.AdminUsername, cfg.DemoPassword, cfg.UserCount)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}

	log.Infof("seeded %d users and %d messages (admin id: %s)", result.UsersCreated, result.MessagesCreated, result.AdminID)
}
