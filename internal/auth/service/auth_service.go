package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	authdomain "github.com/talkroom-app/backend/internal/auth/domain"
	authrepo "github.com/talkroom-app/backend/internal/auth/repository"
	"github.com/talkroom-app/backend/internal/common/clock"
	"github.com/talkroom-app/backend/internal/common/constants"
	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/observability/metrics"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

type AuthServiceDeps struct {
	UserRepo         userrepo.Repository
	RefreshTokenRepo authrepo.RefreshTokenRepository
	Hasher           commoncrypto.PasswordHasher
	IDGenerator      commoncrypto.IDGenerator
	JWTSecret        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	MaxRefreshTokens int
	Log              *logger.Logger

	// Clock defaults to the real clock when nil; tests inject a mock.
	Clock clock.Clock
}

type AuthService struct {
	userRepo         userrepo.Repository
	refreshTokenRepo authrepo.RefreshTokenRepository
	hasher           commoncrypto.PasswordHasher
	idGenerator      commoncrypto.IDGenerator
	jwtSecret        []byte
	clock            clock.Clock
	log              *logger.Logger
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	maxRefreshTokens int
}

func NewAuthService(deps AuthServiceDeps) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &AuthService{
		userRepo:         deps.UserRepo,
		refreshTokenRepo: deps.RefreshTokenRepo,
		hasher:           deps.Hasher,
		idGenerator:      deps.IDGenerator,
		jwtSecret:        []byte(deps.JWTSecret),
		clock:            clk,
		log:              deps.Log,
		accessTokenTTL:   deps.AccessTokenTTL,
		refreshTokenTTL:  deps.RefreshTokenTTL,
		maxRefreshTokens: deps.MaxRefreshTokens,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	UserID           string
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateCredentials(input.Username, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, commonerrors.ErrUsernameTaken) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: username already exists")
			return AuthResult{}, commonerrors.ErrUsernameTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "register_token_issue_failed",
		}).Errorf("register failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	metrics.UsersRegisteredTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if err := validateCredentials(input.Username, input.Password); err != nil {
		return AuthResult{}, commonerrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			return AuthResult{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		return AuthResult{}, commonerrors.ErrInvalidCredentials
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  string(user.ID),
			"action":   "login_token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		return AuthResult{}, err
	}

	metrics.LoginsTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "login_success",
	}).Info("login success")

	return result, nil
}

// RefreshAccessToken rotates the refresh token: the presented token is
// deleted and a fresh pair is issued. A reused or unknown token is
// rejected without detail.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return AuthResult{}, commonerrors.ErrInvalidRefreshToken
	}

	hash := hashRefreshToken(refreshToken)

	stored, err := s.refreshTokenRepo.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "refresh_token_not_found",
			}).Warn("refresh token failed: not found")
			return AuthResult{}, commonerrors.ErrInvalidRefreshToken
		}
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if err := s.refreshTokenRepo.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_delete_failed",
		}).Errorf("refresh token failed to delete old token: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	if s.clock.Now().After(stored.ExpiresAt) {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_expired",
		}).Warn("refresh token expired")
		metrics.RefreshTokensExpired.Inc()
		return AuthResult{}, commonerrors.ErrRefreshTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, userdomain.ID(stored.UserID))
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": stored.UserID,
			"action":  "refresh_token_user_lookup_failed",
		}).Errorf("refresh token failed: user lookup error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	metrics.RefreshTokensUsed.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": stored.UserID,
		"action":  "refresh_token_success",
	}).Info("refresh token success")

	return result, nil
}

func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)

	if err := s.refreshTokenRepo.DeleteByTokenHash(ctx, hash); err != nil {
		if errors.Is(err, authrepo.ErrRefreshTokenNotFound) {
			return nil
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "revoke_refresh_token_failed",
		}).Errorf("revoke refresh token failed: %v", err)
		return err
	}

	metrics.RefreshTokensRevoked.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"action": "refresh_token_revoked",
	}).Info("refresh token revoked")
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user userdomain.User) (AuthResult, error) {
	accessToken, err := s.issueAccessToken(user)
	if err != nil {
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	refresh, err := s.issueRefreshToken(ctx, user)
	if err != nil {
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	return AuthResult{
		UserID:           string(user.ID),
		AccessToken:      accessToken,
		RefreshToken:     refresh.RawToken,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (s *AuthService) issueAccessToken(user userdomain.User) (string, error) {
	jti, err := s.idGenerator.NewID()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub": string(user.ID),
		"usr": user.Username,
		"jti": jti,
		"exp": s.clock.Now().Add(s.accessTokenTTL).Unix(),
		"iat": s.clock.Now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	metrics.AccessTokensIssued.Inc()
	return tokenString, nil
}

func (s *AuthService) issueRefreshToken(ctx context.Context, user userdomain.User) (authdomain.RefreshToken, error) {
	count, err := s.refreshTokenRepo.CountByUserID(ctx, string(user.ID))
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	if count >= s.maxRefreshTokens {
		if err := s.refreshTokenRepo.DeleteOldestByUserID(ctx, string(user.ID)); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(user.ID),
				"action":  "delete_oldest_refresh_token_failed",
			}).Warnf("failed to delete oldest refresh token: %v", err)
		}
	}

	rawToken, err := generateRefreshToken()
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return authdomain.RefreshToken{}, err
	}

	stored := authdomain.RefreshToken{
		ID:        id,
		TokenHash: hashRefreshToken(rawToken),
		UserID:    string(user.ID),
		ExpiresAt: s.clock.Now().Add(s.refreshTokenTTL),
		CreatedAt: s.clock.Now(),
	}

	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return authdomain.RefreshToken{}, err
	}

	metrics.RefreshTokensIssued.Inc()
	stored.RawToken = rawToken
	return stored, nil
}

func generateRefreshToken() (string, error) {
	b := make([]byte, constants.RefreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
