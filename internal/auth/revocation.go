package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers invalidated token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, token InvalidatedToken) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// PostgresRevocationStore keeps invalidated tokens in the invalidated_tokens table.
type PostgresRevocationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRevocationStore constructs the store.
func NewPostgresRevocationStore(pool *pgxpool.Pool) *PostgresRevocationStore {
	return &PostgresRevocationStore{pool: pool}
}

// Revoke records token. Revoking twice is a no-op.
func (s *PostgresRevocationStore) Revoke(ctx context.Context, token InvalidatedToken) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO invalidated_tokens (id, expiry_time) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, token.ID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether id was revoked.
func (s *PostgresRevocationStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invalidated_tokens WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("auth: check revoked: %w", err)
	}
	return exists, nil
}

// DeleteExpired drops records whose tokens expired before cutoff.
func (s *PostgresRevocationStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM invalidated_tokens WHERE expiry_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auth: purge invalidated tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

const revokedKeyPrefix = "revoked:"

// RedisRevocationStore keeps invalidated tokens as expiring Redis keys.
type RedisRevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevocationStore constructs the store.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

// Revoke stores the id until the token expires. Already expired tokens are not stored.
func (s *RedisRevocationStore) Revoke(ctx context.Context, token InvalidatedToken) error {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+token.ID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether id was revoked.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+id).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: check revoked: %w", err)
	}
	return true, nil
}
