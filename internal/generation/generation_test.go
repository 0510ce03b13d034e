package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/apperr"
)

func TestHTTPServiceGeneratePrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate", r.URL.Path)

		var req PromptParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"Fantasy", "Science Fiction"}, req.Genres)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"T","content":"C","difficulty":"Easy","wordCount":500,"tips":["a","b"],"genres":["Fantasy"]}`))
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, 10*time.Second)
	prompt, err := svc.GeneratePrompt(context.Background(), PromptParams{
		Genres: []string{"Fantasy", "Science Fiction"},
	})
	require.NoError(t, err)
	assert.Equal(t, "T", prompt.Title)
	assert.Equal(t, "C", prompt.Content)
	assert.Equal(t, "Easy", prompt.Difficulty)
	assert.Equal(t, 500, prompt.WordCount)
	assert.Equal(t, []string{"a", "b"}, prompt.Tips)
}

func TestHTTPServiceMapsFailureToUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom with secrets"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, 10*time.Second)
	_, err := svc.GeneratePrompt(context.Background(), PromptParams{Genres: []string{"Fantasy"}})
	require.Error(t, err)

	e := apperr.Get(err)
	require.NotNil(t, e)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
	assert.NotContains(t, e.Message, "secrets", "upstream detail must not leak")
}

func TestHTTPServicePassesThrough413(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"too large"}`, http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, 10*time.Second)
	_, err := svc.DrawingFeedback(context.Background(), DrawingParams{Image: "data:image/png;base64,AAAA"})
	require.Error(t, err)

	e := apperr.Get(err)
	require.NotNil(t, e)
	assert.Equal(t, http.StatusRequestEntityTooLarge, e.HTTPStatus)
}

func TestHTTPServiceTimeoutIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, 20*time.Millisecond)
	_, err := svc.GeneratePrompt(context.Background(), PromptParams{Genres: []string{"Fantasy"}})
	require.Error(t, err)

	e := apperr.Get(err)
	require.NotNil(t, e)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
}

func TestHTTPServiceWritingFeedback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feedback/writing", r.URL.Path)
		w.Write([]byte(`{"feedback":"### Good work"}`))
	}))
	defer srv.Close()

	svc := NewHTTPService(srv.URL, 10*time.Second)
	fb, err := svc.WritingFeedback(context.Background(), WritingParams{
		Exercise:    "exercise",
		UserWriting: "some writing here",
		WordCount:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, "### Good work", fb.Feedback)
}

func TestTemplateServiceGeneratePrompt(t *testing.T) {
	svc := NewTemplateService()

	prompt, err := svc.GeneratePrompt(context.Background(), PromptParams{
		Genres: []string{"Fantasy"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, prompt.ID)
	assert.Equal(t, "The Last Dragon's Secret", prompt.Title)
	assert.NotContains(t, prompt.Content, "{", "all template slots must be filled")
	assert.Contains(t, []string{"Very Easy", "Easy", "Medium", "Hard"}, prompt.Difficulty)
	assert.Contains(t, []int{250, 500, 750, 1000}, prompt.WordCount)
	require.NotEmpty(t, prompt.Tips)
	assert.LessOrEqual(t, len(prompt.Tips), 3)
	assert.Equal(t, genreTips["Fantasy"], prompt.Tips[0])
}

func TestTemplateServiceUnknownGenreFallsBack(t *testing.T) {
	svc := NewTemplateService()

	prompt, err := svc.GeneratePrompt(context.Background(), PromptParams{
		Genres: []string{"Telephone Directories"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The Unexpected Journey", prompt.Title)
	assert.NotContains(t, prompt.Content, "{")
}

func TestTemplateServiceChordProgression(t *testing.T) {
	svc := NewTemplateService()

	prompt, err := svc.ChordProgression(context.Background(), ChordParams{Genre: "Jazz", Key: "F minor"})
	require.NoError(t, err)
	assert.Contains(t, prompt.Title, "F minor")
	assert.Contains(t, prompt.Content, "F minor")
}
