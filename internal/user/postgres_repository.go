package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, open_id, union_id, session_key, name, avatar, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// FindByIdentity looks up a user by open ID or union ID in a single query,
// so one match can never shadow the other.
func (r *PostgresRepository) FindByIdentity(ctx context.Context, openID string, unionID *string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE open_id = $1 OR (union_id IS NOT NULL AND union_id = $2)`

	var u User
	err := r.pool.QueryRow(ctx, query, openID, unionID).Scan(
		&u.ID, &u.OpenID, &u.UnionID, &u.SessionKey,
		&u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user by identity: %w", err)
	}

	return &u, nil
}

// UpsertFromLogin applies a successful login. The session key is always
// overwritten; name and avatar only when the login declared them. The insert
// path relies on the unique constraint on open_id, so concurrent first
// logins for the same identity converge on a single row.
func (r *PostgresRepository) UpsertFromLogin(ctx context.Context, up LoginUpsert) (*User, error) {
	existing, err := r.FindByIdentity(ctx, up.OpenID, up.UnionID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if existing != nil {
		query := `
			UPDATE users
			SET session_key = $2,
			    name = COALESCE($3, name),
			    avatar = COALESCE($4, avatar),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING ` + userColumns

		var u User
		err := r.pool.QueryRow(ctx, query, existing.ID, up.SessionKey, up.Name, up.Avatar).Scan(
			&u.ID, &u.OpenID, &u.UnionID, &u.SessionKey,
			&u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("updating user on login: %w", err)
		}
		return &u, nil
	}

	query := `
		INSERT INTO users (open_id, union_id, session_key, name, avatar)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (open_id) DO UPDATE
		SET session_key = EXCLUDED.session_key,
		    name = COALESCE(EXCLUDED.name, users.name),
		    avatar = COALESCE(EXCLUDED.avatar, users.avatar),
		    updated_at = NOW()
		RETURNING ` + userColumns

	var u User
	err = r.pool.QueryRow(ctx, query, up.OpenID, up.UnionID, up.SessionKey, up.Name, up.Avatar).Scan(
		&u.ID, &u.OpenID, &u.UnionID, &u.SessionKey,
		&u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting user on login: %w", err)
	}

	return &u, nil
}

// UpdateProfile overwrites only the present fields. A present field carrying
// null clears the column; an absent field leaves it as is.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, avatar OptionalString) (*User, error) {
	query := `
		UPDATE users
		SET name = CASE WHEN $2 THEN $3 ELSE name END,
		    avatar = CASE WHEN $4 THEN $5 ELSE avatar END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var u User
	err := r.pool.QueryRow(ctx, query, id, name.Present, name.Value, avatar.Present, avatar.Value).Scan(
		&u.ID, &u.OpenID, &u.UnionID, &u.SessionKey,
		&u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user profile: %w", err)
	}

	return &u, nil
}

// GetByID retrieves a single user by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.OpenID, &u.UnionID, &u.SessionKey,
		&u.Name, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}
