// Package webhook sends best-effort notifications after successful
// generations. Delivery runs detached from the request path: failures are
// logged and swallowed, never retried, never surfaced to the caller.
package webhook

import (
	"context"
	"sync"
	"time"

	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/logging"
	"github.com/musecraft/musecraft/internal/metrics"
)

// Event is the notification payload.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	PromptID  string    `json:"promptId,omitempty"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier posts events to a configured webhook URL.
type Notifier struct {
	client  *httputil.Client
	logger  *logging.Logger
	metrics *metrics.Metrics
	enabled bool
	wg      sync.WaitGroup
}

// NewNotifier creates a notifier. An empty url disables delivery entirely.
func NewNotifier(url string, timeout time.Duration, logger *logging.Logger, m *metrics.Metrics) *Notifier {
	return &Notifier{
		client:  httputil.NewClient(httputil.ClientConfig{BaseURL: url, Timeout: timeout}),
		logger:  logger,
		metrics: m,
		enabled: url != "",
	}
}

// Notify delivers the event in a detached goroutine. The caller's context
// is not used: the response has already been written when delivery runs.
func (n *Notifier) Notify(event Event) {
	if !n.enabled {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := n.client.Post(ctx, "", event)
		if err != nil {
			n.logger.Warn().Err(err).Str("event", event.Type).Msg("webhook delivery failed")
			if n.metrics != nil {
				n.metrics.RecordWebhookDelivery("error")
			}
			return
		}
		resp.Body.Close()

		outcome := "success"
		if resp.StatusCode >= 400 {
			outcome = "rejected"
			n.logger.Warn().Int("status", resp.StatusCode).Str("event", event.Type).Msg("webhook delivery rejected")
		}
		if n.metrics != nil {
			n.metrics.RecordWebhookDelivery(outcome)
		}
	}()
}

// Wait blocks until in-flight deliveries finish. Used on shutdown and in
// tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
