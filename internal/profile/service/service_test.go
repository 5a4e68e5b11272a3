package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talkroom-app/backend/internal/common/constants"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/common/logger"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
)

// Minimal byte prefixes that content sniffing recognizes.
var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0}
)

func setupProfileService(t *testing.T) (*ProfileService, *mockUserRepo, string) {
	t.Helper()
	userRepo := newMockUserRepo()
	avatarDir := t.TempDir()
	log, _ := logger.New("", "test", "info")
	svc := NewProfileService(ProfileServiceDeps{
		UserRepo:    userRepo,
		Hasher:      &mockHasher{},
		IDGenerator: &mockIDGenerator{},
		AvatarDir:   avatarDir,
		Log:         log,
	})
	return svc, userRepo, avatarDir
}

func TestProfileService_GetProfile_Success(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, Username: "alice", Email: "alice@example.com"}, nil
	}

	user, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}

	_, err := svc.GetProfile(context.Background(), "missing")
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProfileService_UpdateUsername_Success(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.updateUsernameFunc = func(ctx context.Context, id userdomain.ID, username string) error {
		if username != "newname" {
			t.Errorf("expected newname, got %s", username)
		}
		return nil
	}

	if err := svc.UpdateUsername(context.Background(), "user-1", "newname"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestProfileService_UpdateUsername_Taken(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.updateUsernameFunc = func(ctx context.Context, id userdomain.ID, username string) error {
		return commonerrors.ErrUsernameTaken
	}

	err := svc.UpdateUsername(context.Background(), "user-1", "newname")
	if !errors.Is(err, commonerrors.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestProfileService_UpdateUsername_Invalid(t *testing.T) {
	svc, _, _ := setupProfileService(t)

	err := svc.UpdateUsername(context.Background(), "user-1", "x")
	if err == nil {
		t.Fatal("expected validation error")
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Code() != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestProfileService_UpdateEmail_Success(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.updateEmailFunc = func(ctx context.Context, id userdomain.ID, email string) error {
		if email != "new@example.com" {
			t.Errorf("expected new@example.com, got %s", email)
		}
		return nil
	}

	if err := svc.UpdateEmail(context.Background(), "user-1", "new@example.com"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestProfileService_ChangePassword_Success(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, PasswordHash: "hash:oldpass99"}, nil
	}
	var storedHash string
	userRepo.updatePasswordHashFunc = func(ctx context.Context, id userdomain.ID, passwordHash string) error {
		storedHash = passwordHash
		return nil
	}

	if err := svc.ChangePassword(context.Background(), "user-1", "oldpass99", "newpass99"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if storedHash != "hash:newpass99" {
		t.Errorf("expected rehashed password, got %q", storedHash)
	}
}

func TestProfileService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, PasswordHash: "hash:oldpass99"}, nil
	}

	err := svc.ChangePassword(context.Background(), "user-1", "wrongpass1", "newpass99")
	if !errors.Is(err, commonerrors.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

func TestProfileService_ChangePassword_WeakNew(t *testing.T) {
	svc, _, _ := setupProfileService(t)

	err := svc.ChangePassword(context.Background(), "user-1", "oldpass99", "short")
	if err == nil {
		t.Fatal("expected validation error")
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Code() != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestProfileService_UpdateAvatar_PNG(t *testing.T) {
	svc, userRepo, avatarDir := setupProfileService(t)
	var storedPath string
	userRepo.updateAvatarPathFunc = func(ctx context.Context, id userdomain.ID, avatarPath string) error {
		storedPath = avatarPath
		return nil
	}

	path, err := svc.UpdateAvatar(context.Background(), "user-1", pngBytes)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(path, "/media/avatars/") || !strings.HasSuffix(path, ".png") {
		t.Errorf("unexpected public path %q", path)
	}
	if storedPath != path {
		t.Errorf("stored path %q does not match returned %q", storedPath, path)
	}

	onDisk := filepath.Join(avatarDir, filepath.Base(path))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("avatar file not written: %v", err)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Error("avatar file content mismatch")
	}
}

func TestProfileService_UpdateAvatar_JPEGExtension(t *testing.T) {
	svc, userRepo, _ := setupProfileService(t)
	userRepo.updateAvatarPathFunc = func(ctx context.Context, id userdomain.ID, avatarPath string) error {
		return nil
	}

	path, err := svc.UpdateAvatar(context.Background(), "user-1", jpegBytes)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("expected .jpg extension, got %q", path)
	}
}

func TestProfileService_UpdateAvatar_UnsupportedType(t *testing.T) {
	svc, _, _ := setupProfileService(t)

	_, err := svc.UpdateAvatar(context.Background(), "user-1", []byte("plain text, not an image"))
	if !errors.Is(err, commonerrors.ErrInvalidAvatarType) {
		t.Errorf("expected ErrInvalidAvatarType, got %v", err)
	}
}

func TestProfileService_UpdateAvatar_Empty(t *testing.T) {
	svc, _, _ := setupProfileService(t)

	_, err := svc.UpdateAvatar(context.Background(), "user-1", nil)
	if !errors.Is(err, commonerrors.ErrInvalidAvatarType) {
		t.Errorf("expected ErrInvalidAvatarType, got %v", err)
	}
}

func TestProfileService_UpdateAvatar_TooLarge(t *testing.T) {
	svc, _, _ := setupProfileService(t)
	data := make([]byte, constants.MaxAvatarSizeBytes+1)
	copy(data, pngBytes)

	_, err := svc.UpdateAvatar(context.Background(), "user-1", data)
	if !errors.Is(err, commonerrors.ErrAvatarTooLarge) {
		t.Errorf("expected ErrAvatarTooLarge, got %v", err)
	}
}

func TestProfileService_UpdateAvatar_UserGoneRemovesFile(t *testing.T) {
	svc, userRepo, avatarDir := setupProfileService(t)
	userRepo.updateAvatarPathFunc = func(ctx context.Context, id userdomain.ID, avatarPath string) error {
		return commonerrors.ErrUserNotFound
	}

	_, err := svc.UpdateAvatar(context.Background(), "ghost", pngBytes)
	if !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	entries, err := os.ReadDir(avatarDir)
	if err != nil {
		t.Fatalf("failed to read avatar dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected orphaned avatar file removed, found %d entries", len(entries))
	}
}
