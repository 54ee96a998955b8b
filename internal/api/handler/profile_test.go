package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugclabs/ugc-auth/internal/api/handler"
	"github.com/ugclabs/ugc-auth/internal/api/middleware"
	"github.com/ugclabs/ugc-auth/internal/user"
)

// authedRequest builds a request carrying a verified identity, going through
// the real auth middleware the way the router wires it.
func authedRequest(t *testing.T, method, target string, body []byte, userID uuid.UUID, openID string, next http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	token, err := testIssuer().Issue(userID, openID)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	middleware.Auth(testIssuer())(next).ServeHTTP(w, req)
	return w
}

// ===== POST /api/wechat/update-userinfo =====

func TestUpdateUserInfo_Success(t *testing.T) {
	userID := uuid.New()

	var gotName, gotAvatar user.OptionalString
	repo := &mockUserRepo{
		updateProfileFn: func(_ context.Context, id uuid.UUID, name, avatar user.OptionalString) (*user.User, error) {
			assert.Equal(t, userID, id)
			gotName, gotAvatar = name, avatar
			return &user.User{
				ID:        userID,
				OpenID:    "OID1",
				Name:      name.Value,
				Avatar:    avatar.Value,
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	h := handler.NewProfileHandler(repo)

	body, _ := json.Marshal(map[string]any{"nickName": "Bob", "avatarUrl": "https://example.com/b.png"})
	w := authedRequest(t, http.MethodPost, "/api/wechat/update-userinfo", body, userID, "OID1", h.UpdateUserInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, gotName.Present)
	require.NotNil(t, gotName.Value)
	assert.Equal(t, "Bob", *gotName.Value)
	require.True(t, gotAvatar.Present)
	require.NotNil(t, gotAvatar.Value)
	assert.Equal(t, "https://example.com/b.png", *gotAvatar.Value)

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "Bob", data["name"])
}

func TestUpdateUserInfo_AbsentFieldsNotOverwritten(t *testing.T) {
	userID := uuid.New()

	var gotName, gotAvatar user.OptionalString
	repo := &mockUserRepo{
		updateProfileFn: func(_ context.Context, id uuid.UUID, name, avatar user.OptionalString) (*user.User, error) {
			gotName, gotAvatar = name, avatar
			return &user.User{ID: userID, OpenID: "OID1", Name: name.Value, CreatedAt: time.Now().UTC()}, nil
		},
	}
	h := handler.NewProfileHandler(repo)

	body, _ := json.Marshal(map[string]any{"nickName": "Bob"})
	w := authedRequest(t, http.MethodPost, "/api/wechat/update-userinfo", body, userID, "OID1", h.UpdateUserInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotName.Present)
	assert.False(t, gotAvatar.Present, "absent avatarUrl must not count as present")
}

func TestUpdateUserInfo_ExplicitNullClearsField(t *testing.T) {
	userID := uuid.New()

	var gotName, gotAvatar user.OptionalString
	repo := &mockUserRepo{
		updateProfileFn: func(_ context.Context, id uuid.UUID, name, avatar user.OptionalString) (*user.User, error) {
			gotName, gotAvatar = name, avatar
			return &user.User{ID: userID, OpenID: "OID1", Avatar: avatar.Value, CreatedAt: time.Now().UTC()}, nil
		},
	}
	h := handler.NewProfileHandler(repo)

	// A null nickName is a present key and must clear the stored value,
	// unlike an absent key which leaves it alone.
	body := []byte(`{"nickName": null, "avatarUrl": "https://example.com/b.png"}`)
	w := authedRequest(t, http.MethodPost, "/api/wechat/update-userinfo", body, userID, "OID1", h.UpdateUserInfo)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotName.Present, "explicit null must arrive as a present field")
	assert.Nil(t, gotName.Value, "explicit null must carry a nil value")
	require.True(t, gotAvatar.Present)
	require.NotNil(t, gotAvatar.Value)
	assert.Equal(t, "https://example.com/b.png", *gotAvatar.Value)

	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Nil(t, data["name"])
}

func TestUpdateUserInfo_NoWeChatIdentity(t *testing.T) {
	repo := &mockUserRepo{}
	h := handler.NewProfileHandler(repo)

	body, _ := json.Marshal(map[string]any{"nickName": "Bob"})
	w := authedRequest(t, http.MethodPost, "/api/wechat/update-userinfo", body, uuid.New(), "", h.UpdateUserInfo)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	errObj := env["error"].(map[string]interface{})
	assert.Equal(t, "NOT_WECHAT_USER", errObj["code"])
}

func TestUpdateUserInfo_NoToken(t *testing.T) {
	h := handler.NewProfileHandler(&mockUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/wechat/update-userinfo", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	middleware.Auth(testIssuer())(http.HandlerFunc(h.UpdateUserInfo)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUserInfo_UserNotFound(t *testing.T) {
	repo := &mockUserRepo{
		updateProfileFn: func(_ context.Context, _ uuid.UUID, _, _ user.OptionalString) (*user.User, error) {
			return nil, user.ErrUserNotFound
		},
	}
	h := handler.NewProfileHandler(repo)

	body, _ := json.Marshal(map[string]any{"nickName": "Bob"})
	w := authedRequest(t, http.MethodPost, "/api/wechat/update-userinfo", body, uuid.New(), "OID1", h.UpdateUserInfo)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== GET /profile =====

func TestGetProfile_Success(t *testing.T) {
	userID := uuid.New()
	repo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*user.User, error) {
			assert.Equal(t, userID, id)
			return &user.User{
				ID:        userID,
				OpenID:    "OID1",
				Name:      strPtr("Alice"),
				CreatedAt: time.Now().UTC(),
			}, nil
		},
	}
	h := handler.NewProfileHandler(repo)

	w := authedRequest(t, http.MethodGet, "/profile", nil, userID, "OID1", h.Get)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "Alice", data["name"])
	assert.Equal(t, "OID1", data["wechatOpenId"])
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := &mockUserRepo{}
	h := handler.NewProfileHandler(repo)

	w := authedRequest(t, http.MethodGet, "/profile", nil, uuid.New(), "OID1", h.Get)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
