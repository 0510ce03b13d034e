package server

import (
	"net/http"

	"github.com/musecraft/musecraft/internal/generation"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/validate"
)

type soundDesignRequest struct {
	Genres      []string `json:"genres"`
	Description string   `json:"description,omitempty"`
}

func (s *Server) handleSoundDesign(w http.ResponseWriter, r *http.Request) {
	var req soundDesignRequest
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

	prompt, err := s.gen.SoundDesign(r.Context(), generation.SoundDesignParams{
		Genres:      req.Genres,
		Description: req.Description,
	})
	if err != nil {
		s.recordGeneration("sound_design", err)
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("sound design generation failed")
		httputil.WriteError(w, err)
		return
	}
	s.recordGeneration("sound_design", nil)
	httputil.WriteJSON(w, http.StatusOK, prompt)
}

type chordProgressionRequest struct {
	Genre string `json:"genre"`
	Key   string `json:"key,omitempty"`
	Mood  string `json:"mood,omitempty"`
}

func (s *Server) handleChordProgression(w http.ResponseWriter, r *http.Request) {
	var req chordProgressionRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.NonEmptyText("Genre", req.Genre); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !s.rate.Allow(w, r) {
		return
	}

	prompt, err := s.gen.ChordProgression(r.Context(), generation.ChordParams{
		Genre: req.Genre,
		Key:   req.Key,
		Mood:  req.Mood,
	})
	if err != nil {
		s.recordGeneration("chord_progression", err)
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("chord progression generation failed")
		httputil.WriteError(w, err)
		return
	}
	s.recordGeneration("chord_progression", nil)
	httputil.WriteJSON(w, http.StatusOK, prompt)
}
