package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/talkroom-app/backend/internal/common/constants"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
)

type AppConfig struct {
	HTTPPort         string
	DatabaseURL      string
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	MaxRefreshTokens int
	RequestTimeout   time.Duration
	SearchTimeout    time.Duration
	AvatarDir        string
	FriendsPageSize  int
}

type SeedConfig struct {
	DatabaseURL   string
	AdminUsername string
	UserCount     int
	DemoPassword  string
}

// LoadApp reads server configuration from the environment. A .env file in
// the working directory is merged in first when present (development only).
func LoadApp() (AppConfig, error) {
	_ = godotenv.Load()

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AppConfig{}, err
	}

	if len(jwtSecret) < constants.JWTSecretMinLength {
		return AppConfig{}, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(jwtSecret))
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return AppConfig{}, err
	}

	return AppConfig{
		HTTPPort:         getEnv("HTTP_PORT", constants.DefaultHTTPPort),
		DatabaseURL:      databaseURL,
		JWTSecret:        jwtSecret,
		AccessTokenTTL:   getDurationEnv("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL:  getDurationEnv("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		MaxRefreshTokens: getIntEnv("MAX_REFRESH_TOKENS_PER_USER", constants.DefaultMaxRefreshTokens),
		RequestTimeout:   getDurationEnv("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		SearchTimeout:    getDurationEnv("SEARCH_TIMEOUT", constants.DefaultSearchTimeout),
		AvatarDir:        getEnv("AVATAR_DIR", "media/avatars"),
		FriendsPageSize:  getIntEnv("FRIENDS_PAGE_SIZE", constants.FriendsPageSize),
	}, nil
}

func LoadSeed() (SeedConfig, error) {
	_ = godotenv.Load()

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return SeedConfig{}, err
	}

	return SeedConfig{
		DatabaseURL:   databaseURL,
		AdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
		UserCount:     getIntEnv("SEED_USER_COUNT", 1000),
		DemoPassword:  getEnv("SEED_DEMO_PASSWORD", "demo-pass-1234"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
