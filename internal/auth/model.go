package auth

import "github.com/google/uuid"

// Identity is stored in the request context after token verification.
type Identity struct {
	UserID uuid.UUID
	OpenID string
}
