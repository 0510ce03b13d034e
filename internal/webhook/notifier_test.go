package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musecraft/musecraft/internal/logging"
)

func TestNotifyDeliversEvent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err == nil {
			got.Store(ev)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second, logging.Nop(), nil)
	n.Notify(Event{Type: "prompt.generated", UserID: "user-1", Title: "T"})
	n.Wait()

	ev, ok := got.Load().(Event)
	require.True(t, ok, "webhook endpoint should have received the event")
	assert.Equal(t, "prompt.generated", ev.Type)
	assert.Equal(t, "user-1", ev.UserID)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestNotifySwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, time.Second, logging.Nop(), nil)
	// Must not panic or propagate anything.
	n.Notify(Event{Type: "prompt.generated"})
	n.Wait()
}

func TestNotifyDisabledWithoutURL(t *testing.T) {
	n := NewNotifier("", time.Second, logging.Nop(), nil)
	n.Notify(Event{Type: "prompt.generated"})
	n.Wait()
}
