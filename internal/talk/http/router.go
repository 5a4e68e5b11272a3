package http

import (
	"net/http"
	"strconv"
	"time"

	commonhttp "github.com/talkroom-app/backend/internal/common/http"
	"github.com/talkroom-app/backend/internal/common/jwtverify"
	"github.com/talkroom-app/backend/internal/common/logger"
	talkdomain "github.com/talkroom-app/backend/internal/talk/domain"
	"github.com/talkroom-app/backend/internal/talk/service"
)

type postMessageRequest struct {
	Body string `json:"body" validate:"required,max=500"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

type friendResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	AvatarPath *string    `json:"avatar_path,omitempty"`
	LastTalkAt *time.Time `json:"last_talk_at"`
}

type Handler struct {
	talk *service.TalkService
	log  *logger.Logger
}

func NewHandler(talk *service.TalkService, requestTimeout, searchTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{talk: talk, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/friends", commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(searchTimeout)(h.friends)))
	mux.HandleFunc("/api/talks/", commonhttp.WithTimeout(requestTimeout)(h.talks))

	return mux
}

func (h *Handler) talks(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	otherID, ok := commonhttp.ExtractPathParam(r.URL.Path, "/api/talks/", "")
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeUserIDRequired, "user_id is required", nil, "")
		return
	}
	if err := commonhttp.ValidateUUID(otherID); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidUserIDFormat, "invalid user_id format (must be UUID)", nil, "")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getThread(w, r, claims.UserID, otherID)
	case http.MethodPost:
		h.postMessage(w, r, claims.UserID, otherID)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
	}
}

func (h *Handler) getThread(w http.ResponseWriter, r *http.Request, viewerID, otherID string) {
	ctx := r.Context()

	msgs, err := h.talk.GetThread(ctx, viewerID, otherID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"viewer_id": viewerID,
		"other_id":  otherID,
		"messages":  len(msgs),
		"action":    "talk_thread_success",
	}).Info("talks/thread success")
	commonhttp.WriteJSON(w, http.StatusOK, toMessageResponses(msgs))
}

func (h *Handler) postMessage(w http.ResponseWriter, r *http.Request, senderID, receiverID string) {
	var req postMessageRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("talks/post failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	ctx := r.Context()

	msg, err := h.talk.PostMessage(ctx, senderID, receiverID, req.Body)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

func (h *Handler) friends(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	keyword := q.Get("keyword")
	page := parsePositiveInt(q.Get("page"), 1)
	size := parsePositiveInt(q.Get("size"), 0)

	ctx := r.Context()

	friends, err := h.talk.RankFriends(ctx, claims.UserID, keyword, page, size)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.log.WithFields(ctx, logger.Fields{
		"viewer_id": claims.UserID,
		"keyword":   keyword,
		"page":      page,
		"results":   len(friends),
		"action":    "friends_rank_success",
	}).Info("friends/rank success")
	commonhttp.WriteJSON(w, http.StatusOK, toFriendResponses(friends))
}

func parsePositiveInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func toMessageResponse(m talkdomain.Message) messageResponse {
	return messageResponse{
		ID:         string(m.ID),
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Body:       m.Body,
		SentAt:     m.SentAt,
	}
}

func toMessageResponses(msgs []talkdomain.Message) []messageResponse {
	result := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, toMessageResponse(m))
	}
	return result
}

func toFriendResponses(friends []talkdomain.Friend) []friendResponse {
	result := make([]friendResponse, 0, len(friends))
	for _, f := range friends {
		result = append(result, friendResponse{
			ID:         f.UserID,
			Username:   f.Username,
			AvatarPath: f.AvatarPath,
			LastTalkAt: f.LastTalkAt,
		})
	}
	return result
}
