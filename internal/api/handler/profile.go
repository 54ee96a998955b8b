package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ugclabs/ugc-auth/internal/api/middleware"
	"github.com/ugclabs/ugc-auth/internal/api/response"
	"github.com/ugclabs/ugc-auth/internal/user"
)

type updateUserInfoRequest struct {
	NickName  user.OptionalString `json:"nickName"`
	AvatarURL user.OptionalString `json:"avatarUrl"`
}

// ProfileHandler handles the authenticated profile endpoints.
type ProfileHandler struct {
	users user.Repository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(users user.Repository) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// UpdateUserInfo handles POST /api/wechat/update-userinfo. Only keys present
// in the request body overwrite stored values: an explicit null clears a
// field, an absent key leaves it untouched.
func (h *ProfileHandler) UpdateUserInfo(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", requestID)
		return
	}

	if identity.OpenID == "" {
		response.Err(w, http.StatusBadRequest, "NOT_WECHAT_USER", "User not authenticated via WeChat", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateUserInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), identity.UserID, req.NickName, req.AvatarURL)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to update user info", "error", err, "userId", identity.UserID, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required", requestID)
		return
	}

	u, err := h.users.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "User not found", requestID)
			return
		}
		slog.Error("failed to fetch profile", "error", err, "userId", identity.UserID, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}
