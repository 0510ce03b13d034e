package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SavedPrompt is a persisted prompt-generation result.
type SavedPrompt struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	Difficulty string    `db:"difficulty"`
	WordCount  int       `db:"word_count"`
	Genres     []string  `db:"-"`
	CreatedAt  time.Time `db:"created_at"`
}

// PromptRepository stores prompts and their genre associations.
type PromptRepository struct {
	db *sqlx.DB
}

// NewPromptRepository creates a repository on db.
func NewPromptRepository(db *sqlx.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Save inserts the prompt row and one genre row per genre in a single
// transaction. Any failure rolls the whole insert back.
func (r *PromptRepository) Save(ctx context.Context, p *SavedPrompt) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO prompts (id, user_id, title, content, difficulty, word_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.Title, p.Content, p.Difficulty, p.WordCount, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert prompt: %w", err)
	}

	for _, genre := range p.Genres {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO prompt_genres (prompt_id, genre) VALUES ($1, $2)`,
			p.ID, genre)
		if err != nil {
			return fmt.Errorf("insert prompt genre: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByUser returns a user's saved prompts, newest first.
func (r *PromptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]SavedPrompt, error) {
	if limit <= 0 {
		limit = 50
	}
	var prompts []SavedPrompt
	err := r.db.SelectContext(ctx, &prompts,
		`SELECT id, user_id, title, content, difficulty, word_count, created_at
		 FROM prompts WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}

	for i := range prompts {
		var genres []string
		err := r.db.SelectContext(ctx, &genres,
			`SELECT genre FROM prompt_genres WHERE prompt_id = $1 ORDER BY genre`,
			prompts[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list prompt genres: %w", err)
		}
		prompts[i].Genres = genres
	}
	return prompts, nil
}

// DeleteOlderThan removes prompts older than the cutoff along with their
// genre rows, and returns how many prompts were deleted.
func (r *PromptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM prompt_genres WHERE prompt_id IN (SELECT id FROM prompts WHERE created_at < $1)`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete prompt genres: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM prompts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete prompts: %w", err)
	}
	deleted, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return deleted, nil
}

// Ping verifies database connectivity for health checks.
func (r *PromptRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
