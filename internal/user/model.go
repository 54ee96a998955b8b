package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents a row in the users table.
type User struct {
	ID         uuid.UUID
	OpenID     string
	UnionID    *string // nil when the app is not bound to an open platform account
	SessionKey string
	Name       *string
	Avatar     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
