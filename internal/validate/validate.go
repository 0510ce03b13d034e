// Package validate holds the pure validation rules applied at the handler
// boundary. Every rule returns nil on acceptance or an *apperr.Error
// carrying the user-facing message and HTTP status.
package validate

import (
	"fmt"
	"strings"

	"github.com/musecraft/musecraft/internal/apperr"
)

const (
	// MaxGenres bounds how many genres a single request may combine.
	MaxGenres = 2
	// MaxImageBytes is the decoded-size ceiling for uploaded images.
	MaxImageBytes = 20 * 1024 * 1024
)

var imagePrefixes = []string{
	"data:image/jpeg;base64,",
	"data:image/png;base64,",
}

// GenreCount accepts a genre list of 1 or 2 distinct entries.
func GenreCount(genres []string) *apperr.Error {
	if len(genres) == 0 {
		return apperr.Validation("At least one genre must be selected")
	}
	if len(genres) > MaxGenres {
		return apperr.Validation(fmt.Sprintf("Select at most %d genres", MaxGenres))
	}
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return apperr.Validation("Genre names must not be empty")
		}
		if seen[g] {
			return apperr.Validation("Genres must be distinct")
		}
		seen[g] = true
	}
	return nil
}

// NonEmptyText rejects text that is empty after trimming.
func NonEmptyText(field, text string) *apperr.Error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation(fmt.Sprintf("%s must not be empty", field))
	}
	return nil
}

// WordCount counts words by splitting on whitespace runs and discarding
// empty tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// MinWordCount rejects writing shorter than the required word count. The
// message names both the requirement and the actual count.
func MinWordCount(text string, required int) *apperr.Error {
	actual := WordCount(text)
	if actual < required {
		return apperr.Validation(fmt.Sprintf(
			"Minimum %d words required. You have %d words.", required, actual))
	}
	return nil
}

// ImageFormat requires a base64 data-URI declaring a JPEG or PNG payload.
func ImageFormat(dataURI string) *apperr.Error {
	for _, p := range imagePrefixes {
		if strings.HasPrefix(dataURI, p) {
			return nil
		}
	}
	return apperr.Validation("Image must be a JPEG or PNG data URI")
}

// ImageSize approximates the decoded byte size of the base64 payload as
// floor(chars * 0.75) and rejects anything over MaxImageBytes.
func ImageSize(dataURI string) *apperr.Error {
	payload := dataURI
	if idx := strings.Index(dataURI, ";base64,"); idx >= 0 {
		payload = dataURI[idx+len(";base64,"):]
	}
	size := len(payload) * 3 / 4
	if size > MaxImageBytes {
		return apperr.PayloadTooLarge(fmt.Sprintf(
			"Image is too large (%.1f MiB). Maximum size is %d MiB.",
			float64(size)/(1024*1024), MaxImageBytes/(1024*1024)))
	}
	return nil
}
