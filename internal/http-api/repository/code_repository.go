package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCodeNotFound = errors.New("confirmation code not found")

// CodeRepository stores one confirmation-code hash per username. Writing a
// new hash overwrites the previous one, so only the most recently issued
// code can ever verify.
type CodeRepository interface {
	Store(ctx context.Context, username, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, username string) (string, error)
}

type codeRepository struct {
	client *redis.Client
}

func NewCodeRepository(client *redis.Client) CodeRepository {
	return &codeRepository{client: client}
}

func codeKey(username string) string {
	return fmt.Sprintf("confirmation_code:%s", username)
}

func (r *codeRepository) Store(ctx context.Context, username, codeHash string, ttl time.Duration) error {
	return r.client.Set(ctx, codeKey(username), codeHash, ttl).Err()
}

func (r *codeRepository) Get(ctx context.Context, username string) (string, error) {
	hash, err := r.client.Get(ctx, codeKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}
