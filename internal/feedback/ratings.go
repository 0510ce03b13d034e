// Package feedback stores user ratings of generated prompts.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TTL is how long a rating is retained.
const TTL = 30 * 24 * time.Hour

// Rating is one user's rating of one prompt.
type Rating struct {
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// setter is the subset of the redis client the store needs.
type setter interface {
	SetEX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Store writes ratings to the cache with a fixed TTL.
type Store struct {
	client setter
	now    func() time.Time
}

// NewStore wraps a redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Save records the rating under feedback:<promptID>:<userID>.
func (s *Store) Save(ctx context.Context, promptID, userID string, rating int) error {
	if promptID == "" {
		return fmt.Errorf("prompt id required")
	}
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	if userID == "" {
		userID = "anonymous"
	}

	payload, err := json.Marshal(Rating{Rating: rating, Timestamp: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}

	key := fmt.Sprintf("feedback:%s:%s", promptID, userID)
	if err := s.client.SetEX(ctx, key, payload, TTL).Err(); err != nil {
		return fmt.Errorf("store rating: %w", err)
	}
	return nil
}
