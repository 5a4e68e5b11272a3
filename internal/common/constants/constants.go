package constants

import "time"

const (
	UsernameMinLength  = 3
	UsernameMaxLength  = 32
	PasswordMinLength  = 8
	PasswordMaxLength  = 72
	EmailMaxLength     = 254
	JWTSecretMinLength = 32
	RefreshTokenSize   = 32
	BcryptCost         = 12

	MaxMessageLength      = 500
	MaxSearchKeywordLen   = 100
	FriendsPageSize       = 5
	FriendsMaxPageSize    = 100
	DefaultMaxRequestSize = 1 << 20

	MaxAvatarSizeBytes = 5 * 1024 * 1024

	// Multipart uploads carry the avatar plus form framing, so they get a
	// larger body cap than JSON requests.
	MaxMultipartRequestSize = MaxAvatarSizeBytes + DefaultMaxRequestSize

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultHTTPPort          = "8080"
	DefaultRequestTimeout    = 5 * time.Second
	DefaultSearchTimeout     = 10 * time.Second
	DefaultAccessTokenTTL    = 30 * time.Minute
	DefaultRefreshTokenTTL   = 7 * 24 * time.Hour
	DefaultMaxRefreshTokens  = 5
	RefreshTokenCleanupEvery = time.Hour

	RateLimitCleanupInterval           = 5 * time.Minute
	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
