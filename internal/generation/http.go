package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/httputil"
)

// HTTPService calls the generation service over HTTP. One outbound call per
// operation, a fixed timeout, and no retries: a timeout is just an upstream
// failure.
type HTTPService struct {
	client *httputil.Client
}

// NewHTTPService creates a client for the service at baseURL.
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		client: httputil.NewClient(httputil.ClientConfig{
			BaseURL: baseURL,
			Timeout: timeout,
		}),
	}
}

func (s *HTTPService) GeneratePrompt(ctx context.Context, p PromptParams) (*Prompt, error) {
	body, err := s.call(ctx, "/generate", p)
	if err != nil {
		return nil, err
	}
	return parsePrompt(body), nil
}

func (s *HTTPService) WritingFeedback(ctx context.Context, p WritingParams) (*Feedback, error) {
	return s.callFeedback(ctx, "/feedback/writing", p)
}

func (s *HTTPService) DrawingFeedback(ctx context.Context, p DrawingParams) (*Feedback, error) {
	return s.callFeedback(ctx, "/feedback/drawing", p)
}

func (s *HTTPService) SoundDesign(ctx context.Context, p SoundDesignParams) (*Prompt, error) {
	body, err := s.call(ctx, "/generate/sounddesign", p)
	if err != nil {
		return nil, err
	}
	return parsePrompt(body), nil
}

func (s *HTTPService) ChordProgression(ctx context.Context, p ChordParams) (*Prompt, error) {
	body, err := s.call(ctx, "/generate/chords", p)
	if err != nil {
		return nil, err
	}
	return parsePrompt(body), nil
}

func (s *HTTPService) callFeedback(ctx context.Context, path string, params any) (*Feedback, error) {
	body, err := s.call(ctx, path, params)
	if err != nil {
		return nil, err
	}
	fb := gjson.GetBytes(body, "feedback").String()
	if fb == "" {
		return nil, apperr.Upstream(fmt.Errorf("generation response missing feedback"))
	}
	return &Feedback{Feedback: fb}, nil
}

// call posts params and returns the raw response body. An upstream 413 is
// passed through as payload-too-large; everything else non-2xx is a generic
// upstream failure.
func (s *HTTPService) call(ctx context.Context, path string, params any) ([]byte, error) {
	resp, err := s.client.Post(ctx, path, params)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return nil, apperr.PayloadTooLarge("Submitted content is too large")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(fmt.Errorf("generation service returned status %d", resp.StatusCode))
	}

	body, err := httputil.ReadBody(resp.Body, 8<<20)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return body, nil
}

// parsePrompt extracts the prompt fields leniently, tolerating extra or
// missing optional fields in the upstream payload.
func parsePrompt(body []byte) *Prompt {
	doc := gjson.ParseBytes(body)

	p := &Prompt{
		ID:         doc.Get("id").String(),
		Title:      doc.Get("title").String(),
		Content:    doc.Get("content").String(),
		Difficulty: doc.Get("difficulty").String(),
		WordCount:  int(doc.Get("wordCount").Int()),
	}
	for _, g := range doc.Get("genres").Array() {
		p.Genres = append(p.Genres, g.String())
	}
	for _, tip := range doc.Get("tips").Array() {
		p.Tips = append(p.Tips, tip.String())
	}
	if ts := doc.Get("timestamp").String(); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			p.Timestamp = parsed
		}
	}
	return p
}
