package auth

import (
	"context"
	"fmt"

	"github.com/ugclabs/ugc-auth/internal/user"
	"github.com/ugclabs/ugc-auth/internal/wechat"
)

// CodeExchanger resolves a one-time login code to a verified WeChat session.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*wechat.Session, error)
}

// DeclaredProfile holds the optional client-declared profile fields sent
// alongside a login code. Nil fields leave stored values untouched.
type DeclaredProfile struct {
	Name   *string
	Avatar *string
}

// LoginResult is a completed login: the signed credential, the user record,
// and the provider session key from this exchange.
type LoginResult struct {
	Token      string
	User       *user.User
	SessionKey string
}

// Service runs the login flow: code exchange, user upsert, credential
// issuance.
type Service struct {
	exchanger CodeExchanger
	users     user.Repository
	issuer    *Issuer
}

// NewService creates a new auth Service.
func NewService(exchanger CodeExchanger, users user.Repository, issuer *Issuer) *Service {
	return &Service{
		exchanger: exchanger,
		users:     users,
		issuer:    issuer,
	}
}

// Login exchanges the one-time code, upserts the user record, and issues a
// session credential. Exchange errors are returned as-is so callers can
// distinguish wechat.ErrNotConfigured and *wechat.APIError.
func (s *Service) Login(ctx context.Context, code string, declared DeclaredProfile) (*LoginResult, error) {
	session, err := s.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	u, err := s.users.UpsertFromLogin(ctx, user.LoginUpsert{
		OpenID:     session.OpenID,
		UnionID:    session.UnionID,
		SessionKey: session.SessionKey,
		Name:       declared.Name,
		Avatar:     declared.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting user from login: %w", err)
	}

	token, err := s.issuer.Issue(u.ID, u.OpenID)
	if err != nil {
		return nil, fmt.Errorf("issuing session credential: %w", err)
	}

	return &LoginResult{
		Token:      token,
		User:       u,
		SessionKey: session.SessionKey,
	}, nil
}
