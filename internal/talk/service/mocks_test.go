package service

import (
	"context"

	talkdomain "github.com/talkroom-app/backend/internal/talk/domain"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
)

type mockTalkRepo struct {
	createFunc      func(ctx context.Context, msg talkdomain.Message) (talkdomain.Message, error)
	listThreadFunc  func(ctx context.Context, viewerID, otherID string) ([]talkdomain.Message, error)
	rankFriendsFunc func(ctx context.Context, viewerID, keyword string, limit, offset int) ([]talkdomain.Friend, error)
	bulkCreateFunc  func(ctx context.Context, msgs []talkdomain.Message) (int64, error)
}

func newMockTalkRepo() *mockTalkRepo {
	return &mockTalkRepo{}
}

func (m *mockTalkRepo) Create(ctx context.Context, msg talkdomain.Message) (talkdomain.Message, error) {
	return m.createFunc(ctx, msg)
}

func (m *mockTalkRepo) ListThread(ctx context.Context, viewerID, otherID string) ([]talkdomain.Message, error) {
	return m.listThreadFunc(ctx, viewerID, otherID)
}

func (m *mockTalkRepo) RankFriends(ctx context.Context, viewerID, keyword string, limit, offset int) ([]talkdomain.Friend, error) {
	return m.rankFriendsFunc(ctx, viewerID, keyword, limit, offset)
}

func (m *mockTalkRepo) BulkCreate(ctx context.Context, msgs []talkdomain.Message) (int64, error) {
	return m.bulkCreateFunc(ctx, msgs)
}

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

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	return "00000000-0000-0000-0000-000000000001", nil
}
