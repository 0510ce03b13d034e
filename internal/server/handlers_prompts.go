package server

import (
	"net/http"
	"time"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/generation"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/middleware"
	"github.com/musecraft/musecraft/internal/storage"
	"github.com/musecraft/musecraft/internal/validate"
	"github.com/musecraft/musecraft/internal/webhook"
)

type promptRequest struct {
	Genres       []string `json:"genres"`
	ExerciseType string   `json:"exerciseType,omitempty"`
}

// handleGeneratePrompt validates, rate-limits, calls the generation
// service and maps its response 1:1. For authenticated users the
// result is also persisted; a persistence failure surfaces as 500 even
// though generation succeeded.
func (s *Server) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.GenreCount(req.Genres); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !s.rate.Allow(w, r) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	prompt, err := s.gen.GeneratePrompt(r.Context(), generation.PromptParams{
		Genres:       req.Genres,
		ExerciseType: req.ExerciseType,
		UserID:       userID,
	})
	if err != nil {
		s.recordGeneration("prompt", err)
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("prompt generation failed")
		httputil.WriteError(w, err)
		return
	}
	s.recordGeneration("prompt", nil)

	if userID != "" && s.prompts != nil {
		saved := &storage.SavedPrompt{
			ID:         prompt.ID,
			UserID:     userID,
			Title:      prompt.Title,
			Content:    prompt.Content,
			Difficulty: prompt.Difficulty,
			WordCount:  prompt.WordCount,
			Genres:     req.Genres,
		}
		if err := s.prompts.Save(r.Context(), saved); err != nil {
			s.logger.WithContext(r.Context()).Error().Err(err).Msg("prompt persistence failed")
			httputil.WriteError(w, apperr.Upstream(err))
			return
		}
		prompt.ID = saved.ID
	}

	if s.notifier != nil {
		s.notifier.Notify(webhook.Event{
			Type:     "prompt.generated",
			UserID:   userID,
			PromptID: prompt.ID,
			Title:    prompt.Title,
		})
	}

	httputil.WriteJSON(w, http.StatusOK, prompt)
}

type ratePromptRequest struct {
	PromptID string `json:"promptId"`
	Rating   int    `json:"rating"`
}

// handleRatePrompt stores a prompt rating with a bounded lifetime.
func (s *Server) handleRatePrompt(w http.ResponseWriter, r *http.Request) {
	var req ratePromptRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.PromptID == "" {
		httputil.WriteError(w, apperr.Validation("promptId is required"))
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httputil.WriteError(w, apperr.Validation("rating must be between 1 and 5"))
		return
	}
	if s.ratings == nil {
		httputil.WriteError(w, apperr.Upstream(nil))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := s.ratings.Save(r.Context(), req.PromptID, userID, req.Rating); err != nil {
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("rating store failed")
		httputil.WriteError(w, apperr.Upstream(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleListSaved returns the caller's saved prompts, newest first.
func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	if s.prompts == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"prompts": []any{}})
		return
	}
	userID := middleware.GetUserID(r.Context())
	prompts, err := s.prompts.ListByUser(r.Context(), userID, 50)
	if err != nil {
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("list saved prompts failed")
		httputil.WriteError(w, apperr.Upstream(err))
		return
	}

	type savedPrompt struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Content    string   `json:"content"`
		Difficulty string   `json:"difficulty"`
		WordCount  int      `json:"wordCount"`
		Genres     []string `json:"genres"`
		CreatedAt  string   `json:"createdAt"`
	}
	out := make([]savedPrompt, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, savedPrompt{
			ID:         p.ID,
			Title:      p.Title,
			Content:    p.Content,
			Difficulty: p.Difficulty,
			WordCount:  p.WordCount,
			Genres:     p.Genres,
			CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"prompts": out})
}

func (s *Server) recordGeneration(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.RecordGenerationCall(operation, outcome)
}
