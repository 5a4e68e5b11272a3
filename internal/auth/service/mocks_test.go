package service

import (
	"context"
	"fmt"
	"time"

	authdomain "github.com/talkroom-app/backend/internal/auth/domain"
	authrepo "github.com/talkroom-app/backend/internal/auth/repository"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
)

type mockUserRepo struct {
	createFunc             func(ctx context.Context, user userdomain.User) error
	findByIDFunc           func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
	findByUsernameFunc     func(ctx context.Context, username string) (userdomain.User, error)
	updateUsernameFunc     func(ctx context.Context, id userdomain.ID, username string) error
	updateEmailFunc        func(ctx context.Context, id userdomain.ID, email string) error
	updatePasswordHashFunc func(ctx context.Context, id userdomain.ID, passwordHash string) error
	updateAvatarPathFunc   func(ctx context.Context, id userdomain.ID, avatarPath string) error
	bulkCreateFunc         func(ctx context.Context, users []userdomain.User) (int64, error)
	listIDsFunc            func(ctx context.Context, exclude userdomain.ID) ([]userdomain.ID, error)
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{}
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id userdomain.ID, username string) error {
	return m.updateUsernameFunc(ctx, id, username)
}

func (m *mockUserRepo) UpdateEmail(ctx context.Context, id userdomain.ID, email string) error {
	return m.updateEmailFunc(ctx, id, email)
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id userdomain.ID, passwordHash string) error {
	return m.updatePasswordHashFunc(ctx, id, passwordHash)
}

func (m *mockUserRepo) UpdateAvatarPath(ctx context.Context, id userdomain.ID, avatarPath string) error {
	return m.updateAvatarPathFunc(ctx, id, avatarPath)
}

func (m *mockUserRepo) BulkCreate(ctx context.Context, users []userdomain.User) (int64, error) {
	return m.bulkCreateFunc(ctx, users)
}

func (m *mockUserRepo) ListIDs(ctx context.Context, exclude userdomain.ID) ([]userdomain.ID, error) {
	return m.listIDsFunc(ctx, exclude)
}

// mockRefreshTokenRepo keeps tokens in a map keyed by hash so the
// rotation flow can be exercised end to end.
type mockRefreshTokenRepo struct {
	tokens map[string]authdomain.RefreshToken

	createFunc       func(ctx context.Context, token authdomain.RefreshToken) error
	deleteOldestFunc func(ctx context.Context, userID string) error
	deleteExpired    func(ctx context.Context, before time.Time) (int64, error)
}

func newMockRefreshTokenRepo() *mockRefreshTokenRepo {
	return &mockRefreshTokenRepo{tokens: make(map[string]authdomain.RefreshToken)}
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token authdomain.RefreshToken) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, token)
	}
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockRefreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (authdomain.RefreshToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return authdomain.RefreshToken{}, authrepo.ErrRefreshTokenNotFound
	}
	return token, nil
}

func (m *mockRefreshTokenRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	if _, ok := m.tokens[tokenHash]; !ok {
		return authrepo.ErrRefreshTokenNotFound
	}
	delete(m.tokens, tokenHash)
	return nil
}

func (m *mockRefreshTokenRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, token := range m.tokens {
		if token.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockRefreshTokenRepo) DeleteOldestByUserID(ctx context.Context, userID string) error {
	if m.deleteOldestFunc != nil {
		return m.deleteOldestFunc(ctx, userID)
	}
	var oldestHash string
	var oldest time.Time
	for hash, token := range m.tokens {
		if token.UserID != userID {
			continue
		}
		if oldestHash == "" || token.CreatedAt.Before(oldest) {
			oldestHash = hash
			oldest = token.CreatedAt
		}
	}
	delete(m.tokens, oldestHash)
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if m.deleteExpired != nil {
		return m.deleteExpired(ctx, before)
	}
	var deleted int64
	for hash, token := range m.tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.tokens, hash)
			deleted++
		}
	}
	return deleted, nil
}

// mockHasher avoids bcrypt cost in tests; "hash:" + password stands in
// for the real digest.
type mockHasher struct {
	hashFunc func(password string) (string, error)
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hash:" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if hash == "hash:"+password {
		return nil
	}
	return fmt.Errorf("password mismatch")
}

type mockIDGenerator struct {
	counter int
}

func (m *mockIDGenerator) NewID() (string, error) {
	m.counter++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.counter), nil
}
