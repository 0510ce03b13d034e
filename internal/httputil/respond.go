// Package httputil provides JSON request/response helpers and an outbound
// HTTP client for collaborator calls.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/musecraft/musecraft/internal/apperr"
)

// maxRequestBody must exceed the worst-case base64 drawing payload so the
// image size rule, not the body cap, decides oversize uploads: the 20 MiB
// decoded limit is ~26.7 MiB of base64, and oversize submissions have to
// reach the 413 path intact.
const maxRequestBody = 48 << 20

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteError maps err onto the HTTP response. Unknown errors become a
// generic 500 so internal detail never leaks.
func WriteError(w http.ResponseWriter, err error) {
	e := apperr.Get(err)
	if e == nil {
		e = apperr.Internal("Internal server error", err)
	}
	WriteJSON(w, e.HTTPStatus, ErrorBody{
		Error:   e.Message,
		Code:    string(e.Code),
		Details: e.Details,
	})
}

// DecodeJSON decodes the request body into v. A malformed or missing body
// writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		WriteError(w, apperr.Validation("Request body is required"))
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		WriteError(w, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}
