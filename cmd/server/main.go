package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcleanup "github.com/talkroom-app/backend/internal/auth/cleanup"
	authhttp "github.com/talkroom-app/backend/internal/auth/http"
	authrepo "github.com/talkroom-app/backend/internal/auth/repository"
	authservice "github.com/talkroom-app/backend/internal/auth/service"
	"github.com/talkroom-app/backend/internal/common/config"
	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	"github.com/talkroom-app/backend/internal/common/db"
	commonhttp "github.com/talkroom-app/backend/internal/common/http"
	"github.com/talkroom-app/backend/internal/common/jwtverify"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/common/server"
	profilehttp "github.com/talkroom-app/backend/internal/profile/http"
	profileservice "github.com/talkroom-app/backend/internal/profile/service"
	talkhttp "github.com/talkroom-app/backend/internal/talk/http"
	talkrepo "github.com/talkroom-app/backend/internal/talk/repository"
	talkservice "github.com/talkroom-app/backend/internal/talk/service"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

const serviceName = "talkroom"

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	users := userrepo.NewPgRepository(pool)
	refreshTokens := authrepo.NewPgRefreshTokenRepository(pool)
	talks := talkrepo.NewPgRepository(pool)

	hasher := commoncrypto.NewBcryptHasher()
	idGen := commoncrypto.NewUUIDGenerator()

	auth := authservice.NewAuthService(authservice.AuthServiceDeps{
		UserRepo:         users,
		RefreshTokenRepo: refreshTokens,
		Hasher:           hasher,
		IDGenerator:      idGen,
		JWTSecret:        cfg.JWTSecret,
		AccessTokenTTL:   cfg.AccessTokenTTL,
		RefreshTokenTTL:  cfg.RefreshTokenTTL,
		MaxRefreshTokens: cfg.MaxRefreshTokens,
		Log:              log,
	})

	talk := talkservice.NewTalkService(talkservice.TalkServiceDeps{
		Repo:        talks,
		UserRepo:    users,
		IDGenerator: idGen,
		Log:         log,
		PageSize:    cfg.FriendsPageSize,
	})

	profile := profileservice.NewProfileService(profileservice.ProfileServiceDeps{
		UserRepo:    users,
		Hasher:      hasher,
		IDGenerator: idGen,
		AvatarDir:   cfg.AvatarDir,
		Log:         log,
	})

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	authcleanup.StartRefreshTokenCleanup(cleanupCtx, refreshTokens, log)

	requireAuth := jwtverify.Middleware(cfg.JWTSecret, log)
	talkHandler := requireAuth(talkhttp.NewHandler(talk, cfg.RequestTimeout, cfg.SearchTimeout, log))
	profileHandler := requireAuth(profilehttp.NewHandler(profile, cfg.RequestTimeout, log))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/media/", http.StripPrefix("/media/avatars/", http.FileServer(http.Dir(cfg.AvatarDir))))
	mux.Handle("/api/auth/", authhttp.NewHandler(auth, cfg.RequestTimeout, log))
	mux.Handle("/api/friends", talkHandler)
	mux.Handle("/api/talks/", talkHandler)
	mux.Handle("/api/profile", profileHandler)
	mux.Handle("/api/profile/", profileHandler)

	rateLimited := withRateLimit(commonhttp.NewStrictRateLimiter(), mux)
	handler := commonhttp.BuildBaseHandler(log, rateLimited)

	srv := server.New(server.DefaultConfig(cfg.HTTPPort), handler)
	server.Run(srv, log, serviceName, func(ctx context.Context) error {
		cancelCleanup()
		return nil
	})
}

// withRateLimit applies per-client-IP limits to API traffic. Health and
// metrics scrapes are exempt.
func withRateLimit(limiter *commonhttp.StrictRateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" || strings.HasPrefix(r.URL.Path, "/media/") {
			next.ServeHTTP(w, r)
			return
		}
		limiter.MiddlewareForPath(r.URL.Path)(next).ServeHTTP(w, r)
	})
}
