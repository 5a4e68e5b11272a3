package service

import (
	"context"
	"fmt"

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

type mockHasher struct{}

func (m *mockHasher) Hash(password string) (string, error) {
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
