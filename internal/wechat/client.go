// Package wechat implements the client for the WeChat mini-program login
// exchange and user info endpoints.
package wechat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.weixin.qq.com"

// ErrNotConfigured is returned when the WeChat app ID or app secret is absent.
// No network call is made in that case.
var ErrNotConfigured = errors.New("wechat app ID and app secret must be configured")

// APIError represents a non-zero errcode in a WeChat API response. The raw
// provider code and message are preserved for diagnostics.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error: %d - %s", e.Code, e.Message)
}

// Session is the result of a successful code exchange. UnionID is nil when
// the app is not bound to a WeChat open platform account; that is a normal
// outcome, not an error.
type Session struct {
	OpenID     string
	SessionKey string
	UnionID    *string
}

// Profile is the user info returned by the sns/userinfo endpoint.
type Profile struct {
	OpenID    string `json:"openid"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"headimgurl"`
	Gender    int    `json:"sex"`
	Country   string `json:"country"`
	Province  string `json:"province"`
	City      string `json:"city"`
	UnionID   string `json:"unionid"`
}

// Client calls the WeChat HTTP API. Each operation is a single attempt with
// no retry; callers are synchronous user-facing login requests.
type Client struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the given app credentials.
func NewClient(appID, appSecret string, opts ...ClientOption) *Client {
	c := &Client{
		appID:      appID,
		appSecret:  appSecret,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both app credentials are present.
func (c *Client) Configured() bool {
	return c.appID != "" && c.appSecret != ""
}

type sessionResponse struct {
	OpenID     string  `json:"openid"`
	SessionKey string  `json:"session_key"`
	UnionID    *string `json:"unionid"`
	ErrCode    int     `json:"errcode"`
	ErrMsg     string  `json:"errmsg"`
}

// ExchangeCode trades a one-time login code for the user's session data via
// the jscode2session endpoint. Returns ErrNotConfigured without any network
// call when credentials are absent, and *APIError when WeChat rejects the
// code.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("appid", c.appID)
	q.Set("secret", c.appSecret)
	q.Set("js_code", code)
	q.Set("grant_type", "authorization_code")

	var resp sessionResponse
	if err := c.get(ctx, "/sns/jscode2session", q, &resp); err != nil {
		return nil, err
	}

	if resp.ErrCode != 0 {
		return nil, &APIError{Code: resp.ErrCode, Message: resp.ErrMsg}
	}

	return &Session{
		OpenID:     resp.OpenID,
		SessionKey: resp.SessionKey,
		UnionID:    resp.UnionID,
	}, nil
}

type profileResponse struct {
	Profile
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// FetchProfile retrieves user info from the sns/userinfo endpoint. Used as
// an optional enrichment; not on the login critical path.
func (c *Client) FetchProfile(ctx context.Context, accessToken, openID string) (*Profile, error) {
	q := url.Values{}
	q.Set("access_token", accessToken)
	q.Set("openid", openID)
	q.Set("lang", "zh_CN")

	var resp profileResponse
	if err := c.get(ctx, "/sns/userinfo", q, &resp); err != nil {
		return nil, err
	}

	if resp.ErrCode != 0 {
		return nil, &APIError{Code: resp.ErrCode, Message: resp.ErrMsg}
	}

	return &resp.Profile, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling wechat api: %w", err)
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding wechat response: %w", err)
	}

	return nil
}
