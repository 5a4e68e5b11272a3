package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/talkroom-app/backend/internal/common/constants"
	commoncrypto "github.com/talkroom-app/backend/internal/common/crypto"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/observability/metrics"
	talkdomain "github.com/talkroom-app/backend/internal/talk/domain"
	talkrepo "github.com/talkroom-app/backend/internal/talk/repository"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
	userrepo "github.com/talkroom-app/backend/internal/user/repository"
)

type TalkServiceDeps struct {
	Repo        talkrepo.Repository
	UserRepo    userrepo.Repository
	IDGenerator commoncrypto.IDGenerator
	Log         *logger.Logger
	PageSize    int
}

type TalkService struct {
	repo        talkrepo.Repository
	userRepo    userrepo.Repository
	idGenerator commoncrypto.IDGenerator
	log         *logger.Logger
	pageSize    int
}

func NewTalkService(deps TalkServiceDeps) *TalkService {
	pageSize := deps.PageSize
	if pageSize <= 0 {
		pageSize = constants.FriendsPageSize
	}
	return &TalkService{
		repo:        deps.Repo,
		userRepo:    deps.UserRepo,
		idGenerator: deps.IDGenerator,
		log:         deps.Log,
		pageSize:    pageSize,
	}
}

// GetThread returns the full two-way history between viewer and other,
// oldest first. Viewer and other may be the same user; notes to self are
// an ordinary thread.
func (s *TalkService) GetThread(ctx context.Context, viewerID, otherID string) ([]talkdomain.Message, error) {
	if _, err := s.userRepo.FindByID(ctx, userdomain.ID(otherID)); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"viewer_id": viewerID,
				"other_id":  otherID,
				"action":    "get_thread_user_not_found",
			}).Warn("get thread failed: user not found")
			return nil, commonerrors.ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"viewer_id": viewerID,
			"other_id":  otherID,
			"action":    "get_thread_user_lookup_failed",
		}).Errorf("get thread failed: user lookup error: %v", err)
		return nil, commonerrors.ErrUserGetFailed.WithCause(err)
	}

	msgs, err := s.repo.ListThread(ctx, viewerID, otherID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"viewer_id": viewerID,
			"other_id":  otherID,
			"action":    "get_thread_failed",
		}).Errorf("get thread failed: %v", err)
		return nil, commonerrors.ErrThreadFetchFailed.WithCause(err)
	}

	metrics.ThreadsFetchedTotal.Inc()
	return msgs, nil
}

// PostMessage validates and persists one message. The timestamp is
// assigned by the store at commit time; callers never supply it.
func (s *TalkService) PostMessage(ctx context.Context, senderID, receiverID, body string) (talkdomain.Message, error) {
	if body == "" {
		return talkdomain.Message{}, commonerrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > constants.MaxMessageLength {
		return talkdomain.Message{}, commonerrors.ErrMessageTooLong
	}

	if _, err := s.userRepo.FindByID(ctx, userdomain.ID(receiverID)); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"sender_id":   senderID,
				"receiver_id": receiverID,
				"action":      "post_message_receiver_not_found",
			}).Warn("post message failed: receiver not found")
			return talkdomain.Message{}, commonerrors.ErrUserNotFound
		}
		return talkdomain.Message{}, commonerrors.ErrUserGetFailed.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"sender_id": senderID,
			"action":    "post_message_id_generation_failed",
		}).Errorf("post message failed: id generation error: %v", err)
		return talkdomain.Message{}, commonerrors.ErrMessageSendFailed.WithCause(err)
	}

	msg, err := s.repo.Create(ctx, talkdomain.Message{
		ID:         talkdomain.ID(id),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"sender_id":   senderID,
			"receiver_id": receiverID,
			"action":      "post_message_failed",
		}).Errorf("post message failed: %v", err)
		return talkdomain.Message{}, commonerrors.ErrMessageSendFailed.WithCause(err)
	}

	metrics.MessagesSentTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"message_id":  string(msg.ID),
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"action":      "message_sent",
	}).Info("message sent")
	return msg, nil
}

// RankFriends lists every user other than the viewer ordered by the most
// recent interaction in either direction, never-contacted users last.
// Ordering is computed before the page window is applied.
func (s *TalkService) RankFriends(ctx context.Context, viewerID, keyword string, page, size int) ([]talkdomain.Friend, error) {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) > constants.MaxSearchKeywordLen {
		return nil, commonerrors.ErrKeywordTooLong
	}

	if _, err := s.userRepo.FindByID(ctx, userdomain.ID(viewerID)); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"viewer_id": viewerID,
				"action":    "rank_friends_viewer_not_found",
			}).Warn("rank friends failed: viewer not found")
			return nil, commonerrors.ErrUserNotFound
		}
		return nil, commonerrors.ErrUserGetFailed.WithCause(err)
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = s.pageSize
	}
	if size > constants.FriendsMaxPageSize {
		size = constants.FriendsMaxPageSize
	}

	friends, err := s.repo.RankFriends(ctx, viewerID, keyword, size, (page-1)*size)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"viewer_id": viewerID,
			"action":    "rank_friends_failed",
		}).Errorf("rank friends failed: %v", err)
		return nil, commonerrors.ErrFriendsRankFailed.WithCause(err)
	}

	metrics.FriendsRankedTotal.Inc()
	return friends, nil
}
