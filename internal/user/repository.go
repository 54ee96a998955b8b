package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// LoginUpsert carries the fields written when a login exchange succeeds.
// Name and Avatar are nil when the client declared nothing; nil fields never
// overwrite stored values.
type LoginUpsert struct {
	OpenID     string
	UnionID    *string
	SessionKey string
	Name       *string
	Avatar     *string
}

// Repository provides operations on the users table.
type Repository interface {
	// FindByIdentity matches a user on open ID or union ID. The two columns
	// are alternate keys for the same logical identity.
	FindByIdentity(ctx context.Context, openID string, unionID *string) (*User, error)
	// UpsertFromLogin creates the user on first login and refreshes the
	// session key (and any declared profile fields) on every subsequent one.
	UpsertFromLogin(ctx context.Context, up LoginUpsert) (*User, error)
	// UpdateProfile overwrites only the present fields. A present null
	// clears the stored value; an absent field leaves it untouched.
	UpdateProfile(ctx context.Context, id uuid.UUID, name, avatar OptionalString) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
