package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ugclabs/ugc-auth/internal/api/middleware"
	"github.com/ugclabs/ugc-auth/internal/api/response"
	"github.com/ugclabs/ugc-auth/internal/auth"
	"github.com/ugclabs/ugc-auth/internal/user"
	"github.com/ugclabs/ugc-auth/internal/wechat"
)

type declaredUserInfo struct {
	NickName  *string `json:"nickName"`
	AvatarURL *string `json:"avatarUrl"`
}

type loginRequest struct {
	Code     string            `json:"code"`
	UserInfo *declaredUserInfo `json:"userInfo"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         *string `json:"name"`
	Avatar       *string `json:"avatar"`
	WeChatOpenID string  `json:"wechatOpenId"`
	CreatedAt    string  `json:"createdAt"`
}

type loginResponse struct {
	OpenID     string       `json:"openid"`
	SessionKey string       `json:"sessionKey"`
	UnionID    *string      `json:"unionid,omitempty"`
	Token      string       `json:"token"`
	User       userResponse `json:"user"`
}

// LoginHandler handles POST /api/wechat/login.
type LoginHandler struct {
	authService *auth.Service
}

// NewLoginHandler creates a new LoginHandler.
func NewLoginHandler(authService *auth.Service) *LoginHandler {
	return &LoginHandler{authService: authService}
}

// Login exchanges a one-time WeChat code for a session credential and the
// user record. The code is validated before any outbound call is attempted.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		response.Err(w, http.StatusBadRequest, "MISSING_CODE", "Login code is required", requestID)
		return
	}

	var declared auth.DeclaredProfile
	if req.UserInfo != nil {
		declared.Name = req.UserInfo.NickName
		declared.Avatar = req.UserInfo.AvatarURL
	}

	result, err := h.authService.Login(r.Context(), req.Code, declared)
	if err != nil {
		var apiErr *wechat.APIError
		switch {
		case errors.Is(err, wechat.ErrNotConfigured):
			slog.Error("wechat login attempted but credentials are not configured", "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "NOT_CONFIGURED", "WeChat authentication is not configured", requestID)
		case errors.As(err, &apiErr):
			slog.Warn("wechat code exchange rejected", "errcode", apiErr.Code, "errmsg", apiErr.Message, "requestId", requestID)
			response.Err(w, http.StatusBadRequest, "WECHAT_ERROR", apiErr.Error(), requestID)
		default:
			slog.Error("wechat login failed", "error", err, "requestId", requestID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, loginResponse{
		OpenID:     result.User.OpenID,
		SessionKey: result.SessionKey,
		UnionID:    result.User.UnionID,
		Token:      result.Token,
		User:       toUserResponse(result.User),
	}, requestID)
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Avatar:       u.Avatar,
		WeChatOpenID: u.OpenID,
		CreatedAt:    u.CreatedAt.UTC().Format(time.RFC3339),
	}
}
