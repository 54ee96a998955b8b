package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LoginMethodWeChat tags credentials issued through the WeChat code exchange.
const LoginMethodWeChat = "wechat"

// ErrTokenExpired is returned when a credential is past its expiry.
var ErrTokenExpired = errors.New("session credential is expired")

// ErrTokenInvalid is returned when the signature does not match or the
// payload is malformed.
var ErrTokenInvalid = errors.New("session credential is invalid")

// Claims is the payload carried by a session credential.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"userId"`
	OpenID      string `json:"wechatOpenId"`
	LoginMethod string `json:"loginMethod"`
}

// Issuer mints and verifies signed session credentials. Verification is
// stateless; there is no server-side session table and no revocation list.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer signing with the given secret. Credentials
// expire after ttl.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl}
}

// Issue signs a credential for the given user, valid for the issuer's TTL.
func (i *Issuer) Issue(userID uuid.UUID, openID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID:      userID.String(),
		OpenID:      openID,
		LoginMethod: LoginMethodWeChat,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing session credential: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a credential, returning the identity it
// carries. Expired credentials yield ErrTokenExpired; everything else that
// fails validation yields ErrTokenInvalid.
func (i *Issuer) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &Identity{UserID: userID, OpenID: claims.OpenID}, nil
}
