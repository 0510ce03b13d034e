// Package generation talks to the downstream generation service that turns
// validated request parameters into prompts and feedback.
package generation

import (
	"context"
	"time"
)

// PromptParams are the validated fields forwarded for prompt generation.
type PromptParams struct {
	Genres       []string `json:"genres"`
	ExerciseType string   `json:"exerciseType,omitempty"`
	UserID       string   `json:"userId,omitempty"`
}

// WritingParams are the fields forwarded for writing feedback.
type WritingParams struct {
	Exercise     string   `json:"exercise"`
	ExerciseType string   `json:"exerciseType,omitempty"`
	UserWriting  string   `json:"userWriting"`
	Genres       []string `json:"genres,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	WordCount    int      `json:"wordCount"`
}

// DrawingParams are the fields forwarded for drawing feedback.
type DrawingParams struct {
	Image      string   `json:"image"`
	Exercise   string   `json:"exercise"`
	Skills     []string `json:"skills,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// SoundDesignParams are the fields forwarded for sound-design exercises.
type SoundDesignParams struct {
	Genres      []string `json:"genres"`
	Description string   `json:"description,omitempty"`
}

// ChordParams are the fields forwarded for chord-progression exercises.
type ChordParams struct {
	Genre string `json:"genre"`
	Key   string `json:"key,omitempty"`
	Mood  string `json:"mood,omitempty"`
}

// Prompt is a generated exercise. Immutable once received.
type Prompt struct {
	ID         string    `json:"id,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Genres     []string  `json:"genres,omitempty"`
	Difficulty string    `json:"difficulty"`
	WordCount  int       `json:"wordCount"`
	Tips       []string  `json:"tips,omitempty"`
	Timestamp  time.Time `json:"timestamp,omitempty"`
}

// Feedback is generated feedback text in the markdown subset.
type Feedback struct {
	Feedback string `json:"feedback"`
}

// Service is the generation collaborator.
type Service interface {
	GeneratePrompt(ctx context.Context, p PromptParams) (*Prompt, error)
	WritingFeedback(ctx context.Context, p WritingParams) (*Feedback, error)
	DrawingFeedback(ctx context.Context, p DrawingParams) (*Feedback, error)
	SoundDesign(ctx context.Context, p SoundDesignParams) (*Prompt, error)
	ChordProgression(ctx context.Context, p ChordParams) (*Prompt, error)
}
