package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	authservice "github.com/talkroom-app/backend/internal/auth/service"
	"github.com/talkroom-app/backend/internal/common/constants"
	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/observability/metrics"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

var allowedAvatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

type ProfileServiceDeps struct {
	UserRepo    userrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	IDGenerator commoncrypto.IDGenerator
	AvatarDir   string
	Log         *logger.Logger
}

type ProfileService struct {
	userRepo    userrepo.Repository
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	avatarDir   string
	log         *logger.Logger
}

func NewProfileService(deps ProfileServiceDeps) *ProfileService {
	return &ProfileService{
		userRepo:    deps.UserRepo,
		hasher:      deps.Hasher,
		idGenerator: deps.IDGenerator,
		avatarDir:   deps.AvatarDir,
		log:         deps.Log,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (userdomain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userdomain.ID(userID))
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrUserNotFound
		}
		return userdomain.User{}, commonerrors.ErrUserGetFailed.WithCause(err)
	}
	return user, nil
}

func (s *ProfileService) UpdateUsername(ctx context.Context, userID, username string) error {
	if err := authservice.ValidateUsername(username); err != nil {
		return err
	}

	err := s.userRepo.UpdateUsername(ctx, userdomain.ID(userID), username)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUsernameTaken) || errors.Is(err, commonerrors.ErrUserNotFound) {
			return err
		}
		return commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("username").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "username_updated",
	}).Info("username updated")
	return nil
}

func (s *ProfileService) UpdateEmail(ctx context.Context, userID, email string) error {
	err := s.userRepo.UpdateEmail(ctx, userdomain.ID(userID), email)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return err
		}
		return commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("email").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "email_updated",
	}).Info("email updated")
	return nil
}

func (s *ProfileService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := authservice.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userdomain.ID(userID))
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return err
		}
		return commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": userID,
			"action":  "change_password_wrong_current",
		}).Warn("change password failed: wrong current password")
		return commonerrors.ErrWrongPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userdomain.ID(userID), hash); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return err
		}
		return commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("password").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "password_changed",
	}).Info("password changed")
	return nil
}

// UpdateAvatar validates the uploaded bytes by sniffing the content type,
// writes the file under the avatar directory and stores its public path.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", commonerrors.ErrInvalidAvatarType
	}
	if len(data) > constants.MaxAvatarSizeBytes {
		return "", commonerrors.ErrAvatarTooLarge
	}

	detected := mimetype.Detect(data)
	ext, ok := allowedAvatarExtensions[detected.String()]
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"user_id":   userID,
			"mime_type": detected.String(),
			"action":    "avatar_rejected",
		}).Warn("avatar upload rejected: unsupported content type")
		return "", commonerrors.ErrInvalidAvatarType
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return "", commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	if err := os.MkdirAll(s.avatarDir, 0o755); err != nil {
		return "", commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	filename := id + ext
	fullPath := filepath.Join(s.avatarDir, filename)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	publicPath := fmt.Sprintf("/media/avatars/%s", filename)
	if err := s.userRepo.UpdateAvatarPath(ctx, userdomain.ID(userID), publicPath); err != nil {
		_ = os.Remove(fullPath)
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return "", err
		}
		return "", commonerrors.ErrProfileUpdateFailed.WithCause(err)
	}

	metrics.ProfileUpdatesTotal.WithLabelValues("avatar").Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":   userID,
		"mime_type": detected.String(),
		"size":      len(data),
		"action":    "avatar_updated",
	}).Info("avatar updated")

	return publicPath, nil
}
