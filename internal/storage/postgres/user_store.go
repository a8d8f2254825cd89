package postgres

import (
	"context"
	"fmt"

	"mnk3ys-dashboard/internal/domain"
	"mnk3ys-dashboard/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Upsert inserts the user or refreshes its profile fields on conflict.
func (s *UserStore) Upsert(ctx context.Context, user *domain.DiscordUser) error {
	query := `
		INSERT INTO users (id, username, global_name, discriminator, avatar)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			global_name = EXCLUDED.global_name,
			discriminator = EXCLUDED.discriminator,
			avatar = EXCLUDED.avatar,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.GlobalName,
		user.Discriminator,
		user.Avatar,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.DiscordUser, error) {
	query := `
		SELECT id, username, global_name, discriminator, avatar
		FROM users
		WHERE id = $1
	`

	var u domain.DiscordUser
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.GlobalName,
		&u.Discriminator,
		&u.Avatar,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}
