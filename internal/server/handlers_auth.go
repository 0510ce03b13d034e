package server

import (
	"net/http"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/middleware"
)

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

// handleGoogleLogin exchanges a Google credential for a session token.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if !httputil.DecodeJSON(w, r, &req) {
		return
	}
	if req.Credential == "" {
		httputil.WriteError(w, apperr.Unauthenticated("Missing credential"))
		return
	}

	user, err := s.verifier.Verify(r.Context(), req.Credential)
	if err != nil {
		s.logger.WithContext(r.Context()).Warn().Err(err).Msg("credential verification failed")
		httputil.WriteError(w, err)
		return
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		s.logger.WithContext(r.Context()).Error().Err(err).Msg("token issuance failed")
		httputil.WriteError(w, apperr.Internal("Login failed", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// handleProfile returns the identity carried by the verified token.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.Unauthenticated("Authentication required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
