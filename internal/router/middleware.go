package router

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/response"
	"github.com/ovaphlow/pitchfork/service-arcade-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/metrics"
	"github.com/ovaphlow/pitchfork/service-arcade-go/pkg/utilities"
)

const requestIDHeader = "X-Request-ID"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

func (lrw *loggingResponseWriter) statusCode() int {
	if lrw.status == 0 {
		return http.StatusOK
	}
	return lrw.status
}

// RequestIDMiddleware keeps a client supplied X-Request-ID or assigns a ksuid.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > 64 {
				id = utilities.NewKSUID()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs requests and feeds the HTTP metrics. The route label
// is the matched mux pattern so path parameters do not explode cardinality.
func LoggingMiddleware(logger *zap.SugaredLogger, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.statusCode()
			_, pattern := mux.Handler(r)
			metrics.RecordRequest(pattern, status, dur)
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", r.Header.Get(requestIDHeader),
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				// 30 days
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware answers preflight requests and tags responses for the
// configured browser origin.
func CORSMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin != "" && r.Header.Get("Origin") != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+requestIDHeader)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth verifies the bearer token and stores the caller identity in
// the request context.
func RequireAuth(sessions *session.Service, logger *zap.SugaredLogger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Error(w, r, logger, apperr.Unauthorized("no token provided"))
				return
			}
			claims, err := sessions.Verify(token)
			if err != nil {
				response.Error(w, r, logger, apperr.Unauthorized("invalid or expired token"))
				return
			}
			id, err := claims.AccountID()
			if err != nil {
				response.Error(w, r, logger, apperr.Unauthorized("invalid or expired token"))
				return
			}
			ctx := session.WithIdentity(r.Context(), session.Identity{AccountID: id, Username: claims.Username})
			next(w, r.WithContext(ctx))
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RateLimit throttles a handler per client IP. Limiter failures other than
// an exceeded limit let the request through.
func RateLimit(limiter ratelimit.Limiter, scope string, limit int, window time.Duration, logger *zap.SugaredLogger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if limiter == nil || limit <= 0 {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Check(r.Context(), ratelimit.Key(scope, clientIP(r)), limit, window)
			switch {
			case errors.Is(err, ratelimit.ErrLimitExceeded):
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter(time.Now())))
				response.JSON(w, http.StatusTooManyRequests, response.ErrorBody{
					Error: "too many attempts, try again later",
					Code:  "RATE_LIMITED",
				})
				return
			case err != nil:
				logger.Warnw("rate limiter unavailable", "scope", scope, "err", err)
			}
			next(w, r)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
