package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grapelabs/grape/pkg/apperr"
	"github.com/grapelabs/grape/pkg/slogx"
)

// RateLimitConfig defines one fixed-window rate limiting profile.
type RateLimitConfig struct {
	// Window is the fixed counting interval.
	Window time.Duration
	// Max is the number of requests allowed per key per window.
	Max int
	// Message is returned to rejected callers.
	Message string
}

// The two profiles the service runs with. Auth endpoints are throttled
// harder and are additionally keyed by route path so login and register
// budgets are independent per client.
//
// Override with RATELIMIT_{DEFAULT,AUTH}_{MAX,WINDOW_SEC}.
var (
	DefaultLimit = RateLimitConfig{
		Window:  time.Minute,
		Max:     30,
		Message: "Too many requests, please try again later",
	}

	AuthLimit = RateLimitConfig{
		Window:  15 * time.Minute,
		Max:     10,
		Message: "Too many login attempts, please try again later",
	}
)

func init() {
	DefaultLimit = ParseRateLimitFromEnv("DEFAULT", DefaultLimit)
	AuthLimit = ParseRateLimitFromEnv("AUTH", AuthLimit)
}

// ParseRateLimitFromEnv overlays a profile with environment overrides,
// following the pattern RATELIMIT_{prefix}_{field}. Useful for tests.
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv("RATELIMIT_" + prefix + "_MAX"); val != "" {
		if max, err := strconv.Atoi(val); err == nil && max > 0 {
			config.Max = max
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	return config
}

// KeyExtractor derives the rate limiting key from a request (client IP,
// IP+path, etc).
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address, honouring
// X-Forwarded-For and X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// IPPathKeyExtractor keys by client IP and route path, so sibling
// endpoints are throttled independently per client.
func IPPathKeyExtractor(r *http.Request) string {
	return IPKeyExtractor(r) + ":" + r.URL.Path
}

// window is the per-key fixed-window state.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimitResult is the outcome of a single Check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, only meaningful when rejected
}

// RateLimiter tracks fixed-window request counts per key. It is a plain
// service object: construct one per profile at startup and hand it to
// the pipeline. All state lives behind one mutex so increment-and-check
// is a single atomic step under concurrent requests.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window

	cfg RateLimitConfig
	now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRateLimiter builds a limiter for the given profile. A nil clock
// defaults to time.Now.
func NewRateLimiter(cfg RateLimitConfig, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		windows: make(map[string]*window),
		cfg:     cfg,
		now:     now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Check records one request for key and reports whether it is allowed.
func (l *RateLimiter) Check(key string) RateLimitResult {
	nowT := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	win, ok := l.windows[key]
	switch {
	case !ok:
		// First request from this key.
		win = &window{count: 1, resetAt: nowT.Add(l.cfg.Window)}
		l.windows[key] = win
	case nowT.After(win.resetAt):
		// Window has elapsed, start a fresh one.
		win.count = 1
		win.resetAt = nowT.Add(l.cfg.Window)
	case win.count < l.cfg.Max:
		win.count++
	default:
		return RateLimitResult{
			Allowed:    false,
			Limit:      l.cfg.Max,
			Remaining:  0,
			ResetAt:    win.resetAt,
			RetryAfter: ceilSeconds(win.resetAt.Sub(nowT)),
		}
	}

	return RateLimitResult{
		Allowed:   true,
		Limit:     l.cfg.Max,
		Remaining: l.cfg.Max - win.count,
		ResetAt:   win.resetAt,
	}
}

// Start launches the background sweeper that evicts stale windows. The
// sweep interval equals the window length. Call Stop on shutdown.
func (l *RateLimiter) Start() {
	go l.run()
}

// Stop shuts the sweeper down and blocks until it has exited.
func (l *RateLimiter) Stop() {
	close(l.stopCh)
	<-l.doneCh
}

func (l *RateLimiter) run() {
	defer close(l.doneCh)

	ticker := time.NewTicker(l.cfg.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopCh:
			return
		}
	}
}

// sweep removes windows whose reset time has passed. It snapshots the
// map under the lock, decides staleness outside it, then deletes with a
// recheck, so concurrent requests are never blocked behind a full-map
// scan.
func (l *RateLimiter) sweep() {
	nowT := l.now()

	l.mu.Lock()
	snapshot := make(map[string]time.Time, len(l.windows))
	for key, win := range l.windows {
		snapshot[key] = win.resetAt
	}
	l.mu.Unlock()

	var stale []string
	for key, resetAt := range snapshot {
		if nowT.After(resetAt) {
			stale = append(stale, key)
		}
	}
	if len(stale) == 0 {
		return
	}

	l.mu.Lock()
	for _, key := range stale {
		// Recheck: the window may have been reset since the snapshot.
		if win, ok := l.windows[key]; ok && nowT.After(win.resetAt) {
			delete(l.windows, key)
		}
	}
	l.mu.Unlock()
}

// Middleware gates requests through the limiter. Limit headers are set
// on every response; rejections carry Retry-After and a 429 envelope
// without invoking the downstream handler.
func (l *RateLimiter) Middleware(keyExtractor KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyExtractor(r)
			if key == "" {
				// Without a key there is nothing to count against.
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			res := l.Check(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(unixCeil(res.ResetAt), 10))

			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", res.RetryAfter,
				)

				WriteError(ctx, w, apperr.New(apperr.KindTooManyRequests, l.cfg.Message))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

func unixCeil(t time.Time) int64 {
	ms := t.UnixMilli()
	return (ms + 999) / 1000
}
