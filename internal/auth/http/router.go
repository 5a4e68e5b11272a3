package http

import (
	"net/http"
	"time"

	"github.com/talkroom-app/backend/internal/auth/service"
	commonhttp "github.com/talkroom-app/backend/internal/common/http"
	"github.com/talkroom-app/backend/internal/common/logger"
)

const refreshCookieName = "refresh_token"

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

type Handler struct {
	auth *service.AuthService
	log  *logger.Logger
}

func NewHandler(auth *service.AuthService, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, log: log}

	withTimeout := commonhttp.WithTimeout(requestTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", post(withTimeout(h.register)))
	mux.HandleFunc("/api/auth/login", post(withTimeout(h.login)))
	mux.HandleFunc("/api/auth/refresh", post(withTimeout(h.refresh)))
	mux.HandleFunc("/api/auth/logout", post(withTimeout(h.logout)))

	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("auth/register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setRefreshCookie(w, result)
	commonhttp.WriteJSON(w, http.StatusCreated, authResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("auth/login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}
	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setRefreshCookie(w, result)
	commonhttp.WriteJSON(w, http.StatusOK, authResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingRefreshToken, "refresh token cookie is missing", nil, "")
		return
	}

	result, err := h.auth.RefreshAccessToken(r.Context(), cookie.Value)
	if err != nil {
		h.clearRefreshCookie(w)
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	h.setRefreshCookie(w, result)
	commonhttp.WriteJSON(w, http.StatusOK, authResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.RevokeRefreshToken(r.Context(), cookie.Value); err != nil {
			commonhttp.HandleError(w, r, err, h.log)
			return
		}
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, result service.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/api/auth",
		Expires:  result.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
