package http

import (
	"io"
	"net/http"
	"time"

	"github.com/talkroom-app/backend/internal/common/constants"
	commonerrors "github.com/talkroom-app/backend/internal/common/errors"
	commonhttp "github.com/talkroom-app/backend/internal/common/http"
	"github.com/talkroom-app/backend/internal/common/jwtverify"
	"github.com/talkroom-app/backend/internal/common/logger"
	"github.com/talkroom-app/backend/internal/profile/service"
	userdomain "github.com/talkroom-app/backend/internal/user/domain"
)

type updateUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

type updateEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

type profileResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	AvatarPath *string   `json:"avatar_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type avatarResponse struct {
	AvatarPath string `json:"avatar_path"`
}

type Handler struct {
	profile *service.ProfileService
	log     *logger.Logger
}

func NewHandler(profile *service.ProfileService, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{profile: profile, log: log}

	withTimeout := commonhttp.WithTimeout(requestTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile", withTimeout(h.profileRoot))
	mux.HandleFunc("/api/profile/username", commonhttp.RequireMethod(http.MethodPut)(withTimeout(h.updateUsername)))
	mux.HandleFunc("/api/profile/email", commonhttp.RequireMethod(http.MethodPut)(withTimeout(h.updateEmail)))
	mux.HandleFunc("/api/profile/password", commonhttp.RequireMethod(http.MethodPut)(withTimeout(h.changePassword)))
	mux.HandleFunc("/api/profile/avatar", commonhttp.RequireMethod(http.MethodPut)(withTimeout(h.updateAvatar)))

	return mux
}

func (h *Handler) profileRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", nil, "")
		return
	}

	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.profile.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toProfileResponse(user))
}

func (h *Handler) updateUsername(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateUsernameRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if err := h.profile.UpdateUsername(r.Context(), claims.UserID, req.Username); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateEmail(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateEmailRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if err := h.profile.UpdateEmail(r.Context(), claims.UserID, req.Email); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	if err := h.profile.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(constants.MaxAvatarSizeBytes); err != nil {
		commonhttp.HandleError(w, r, commonerrors.ErrAvatarTooLarge, h.log)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeBadRequest, "avatar file is required", nil, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxAvatarSizeBytes+1))
	if err != nil {
		commonhttp.HandleError(w, r, commonerrors.ErrProfileUpdateFailed.WithCause(err), h.log)
		return
	}
	if len(data) > constants.MaxAvatarSizeBytes {
		commonhttp.HandleError(w, r, commonerrors.ErrAvatarTooLarge, h.log)
		return
	}

	path, err := h.profile.UpdateAvatar(r.Context(), claims.UserID, data)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, avatarResponse{AvatarPath: path})
}

func toProfileResponse(user userdomain.User) profileResponse {
	return profileResponse{
		ID:         string(user.ID),
		Username:   user.Username,
		Email:      user.Email,
		AvatarPath: user.AvatarPath,
		CreatedAt:  user.CreatedAt,
	}
}
