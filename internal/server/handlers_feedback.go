package server

import (
	"net/http"

	"github.com/musecraft/musecraft/internal/generation"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/validate"
)

type writingFeedbackRequest struct {
	Exercise     string   `json:"exercise"`
	ExerciseType string   `json:"exerciseType,omitempty"`
	UserWriting  string   `json:"userWriting"`
	Genres       []string `json:"genres,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	WordCount    int      `json:"wordCount"`
}

// handleWritingFeedback checks the submission meets its target length, then
// forwards it for feedback.
func (s *Server) handleWritingFeedback(w http.ResponseWriter, r *http.Request) {
	var req writingFeedbackRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.NonEmptyText("Your writing", req.UserWriting); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.WordCount < 0 {
		req.WordCount = 0
	}
	if err := validate.MinWordCount(req.UserWriting, req.WordCount); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !s.rate.Allow(w, r) {
		return
	}

	fb, err := s.gen.WritingFeedback(r.Context(), generation.WritingParams{
		Exercise:     req.Exercise,
		ExerciseType: req.ExerciseType,
		UserWriting:  req.UserWriting,
		Genres:       req.Genres,
		Difficulty:   req.Difficulty,
		WordCount:    req.WordCount,
	})
	if err != nil {
		s.recordGeneration("writing_feedback", err)
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("writing feedback failed")
		httputil.WriteError(w, err)
		return
	}
	s.recordGeneration("writing_feedback", nil)
	httputil.WriteJSON(w, http.StatusOK, fb)
}

type drawingFeedbackRequest struct {
	Image      string   `json:"image"`
	Exercise   string   `json:"exercise"`
	Skills     []string `json:"skills,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// handleDrawingFeedback validates the uploaded image before forwarding it.
// Format is checked before size so an oversized non-image reads as 400,
// not 413.
func (s *Server) handleDrawingFeedback(w http.ResponseWriter, r *http.Request) {
	var req drawingFeedbackRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.ImageFormat(req.Image); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := validate.ImageSize(req.Image); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !s.rate.Allow(w, r) {
		return
	}

	fb, err := s.gen.DrawingFeedback(r.Context(), generation.DrawingParams{
		Image:      req.Image,
		Exercise:   req.Exercise,
		Skills:     req.Skills,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		s.recordGeneration("drawing_feedback", err)
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("drawing feedback failed")
		httputil.WriteError(w, err)
		return
	}
	s.recordGeneration("drawing_feedback", nil)
	httputil.WriteJSON(w, http.StatusOK, fb)
}
