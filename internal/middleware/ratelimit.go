package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/musecraft/musecraft/internal/apperr"
	"github.com/musecraft/musecraft/internal/httputil"
	"github.com/musecraft/musecraft/internal/logging"
	"github.com/musecraft/musecraft/internal/metrics"
	"github.com/musecraft/musecraft/internal/ratelimit"
)

// RateLimiter applies the windowed per-identity limit to generation
// endpoints. Authenticated requests are keyed by user ID, anonymous ones by
// client IP. Handlers call Allow after validation has passed, so rejected
// input never consumes window quota.
type RateLimiter struct {
	limiter *ratelimit.Limiter
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewRateLimiter creates the check. A nil limiter allows everything.
func NewRateLimiter(limiter *ratelimit.Limiter, logger *logging.Logger, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{limiter: limiter, logger: logger, metrics: m}
}

// Allow enforces the limit, writing the 429 itself and returning false when
// the caller is over quota. Counter-store errors fail open: generation
// availability is worth more than strict counting.
func (m *RateLimiter) Allow(w http.ResponseWriter, r *http.Request) bool {
	if m.limiter == nil {
		return true
	}
	key := GetUserID(r.Context())
	if key == "" {
		key = "ip:" + clientIP(r)
	}

	allowed, err := m.limiter.Check(r.Context(), key)
	if err != nil {
		m.logger.WithContext(r.Context()).Warn().Err(err).Msg("rate limit check failed, allowing request")
		return true
	}
	if !allowed {
		if m.metrics != nil {
			m.metrics.RecordRateLimitRejection()
		}
		m.logger.WithContext(r.Context()).Warn().
			Str("key", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
		httputil.WriteError(w, apperr.RateLimited(m.limiter.Limit(), m.limiter.Window().String()))
		return false
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IPLimiter is a small in-process token-bucket limiter keyed by client IP,
// guarding the unauthenticated auth endpoint against hammering.
type IPLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewIPLimiter allows perSecond requests with the given burst per IP.
func NewIPLimiter(perSecond float64, burst int) *IPLimiter {
	return &IPLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *IPLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.limiters) > 10000 {
		l.limiters = make(map[string]*rate.Limiter)
	}
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

// Handler rejects over-rate callers with 429.
func (l *IPLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientIP(r)).Allow() {
			httputil.WriteError(w, apperr.RateLimited(l.burst, "1s"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
