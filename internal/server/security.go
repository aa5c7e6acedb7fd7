package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/taskreel/lifecycle/internal/logger"
)

// rateWindow is how long per-IP counters accumulate before resetting.
const rateWindow = 5 * time.Minute

// isPublicPath reports whether the path is served without an API key.
func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AuthMiddleware requires a valid API key on every non-public route.
// Key comparison is constant time; failures feed the detector.
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				detector.RecordFailedAuth(ip)

				log := logger.FromContext(r.Context())
				log.Warn(LogMsgAuthFailed,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware caps the request body size. Event batches
// are the largest legitimate payload; anything bigger is abuse.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ipActivity accumulates one client's counters for the current window.
type ipActivity struct {
	failedAuth int
	requests   int
}

// SuspiciousActivityDetector tracks per-IP auth failures and request
// volume over a fixed window and flags abusive clients.
type SuspiciousActivityDetector struct {
	mu          sync.Mutex
	byIP        map[string]*ipActivity
	windowStart time.Time
}

func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		byIP:        make(map[string]*ipActivity),
		windowStart: time.Now(),
	}
}

// activity rotates the window if it has expired and returns the
// counters for ip. Caller must hold the mutex.
func (s *SuspiciousActivityDetector) activity(ip string) *ipActivity {
	if time.Since(s.windowStart) > rateWindow {
		s.byIP = make(map[string]*ipActivity)
		s.windowStart = time.Now()
	}
	a := s.byIP[ip]
	if a == nil {
		a = &ipActivity{}
		s.byIP[ip] = a
	}
	return a
}

// RecordFailedAuth counts a failed authentication attempt and alerts
// once the per-window threshold is reached.
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.activity(ip)
	a.failedAuth++

	if a.failedAuth >= FailedAuthAlertThreshold {
		slog.Warn(SecurityAlertFailedAuth,
			"ip", ip,
			"count", a.failedAuth)
	}
}

// RecordRequest counts a request and reports whether the client is
// still under the per-window rate limit. Blocked requests are logged
// sampled to keep a flood from flooding the log too.
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.activity(ip)
	a.requests++

	if a.requests > RateLimitPerWindow {
		if a.requests%RateLimitLogSample == 0 {
			slog.Warn(SecurityAlertHighRate,
				"ip", ip,
				"requests_in_window", a.requests)
		}
		return false
	}
	return true
}

// SecurityLoggingMiddleware enforces the per-IP rate limit before the
// request reaches the handlers.
func SecurityLoggingMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r, trustedProxies)

			if !detector.RecordRequest(ip) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractIP resolves the client IP. X-Forwarded-For is honored only
// when the direct peer is a trusted proxy, and then the rightmost
// entry wins: that is the hop the proxy actually saw.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	if isTrustedProxy(remoteIP, trustedProxies) {
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			hops := strings.Split(forwarded, ",")
			return strings.TrimSpace(hops[len(hops)-1])
		}
	}

	return remoteIP
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	for _, proxy := range trustedProxies {
		if proxy == ip {
			return true
		}
	}
	return false
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)

			next.ServeHTTP(w, r)
		})
	}
}
