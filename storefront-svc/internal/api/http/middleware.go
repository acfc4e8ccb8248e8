package httpapi

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"street-bites/storefront-svc/internal/metrics"
	"street-bites/storefront-svc/internal/ratelimit"
	"street-bites/storefront-svc/internal/storage"
)

const (
	traceHeader    = "X-Trace-ID"
	modeHeader     = "X-Storefront-Mode"
	sessionCookie  = "admin_token"
	degradedMarker = "degraded"
)

type traceKey struct{}

// TraceID returns the id the logging middleware attached to the request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// ClientIP identifies the caller for rate limiting: the last
// X-Forwarded-For entry, which the gateway appends from the socket peer,
// then X-Real-IP, then the connection's host. Earlier X-Forwarded-For
// entries come from the client and are ignored.
func ClientIP(r *http.Request) string {
	forwarded := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(forwarded) - 1; i >= 0; i-- {
		if hop := strings.TrimSpace(forwarded[i]); hop != "" {
			return hop
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type responseWriter struct {
	http.ResponseWriter
	ctx         context.Context
	statusCode  int
	wroteHeader bool
}

// WriteHeader flags snapshot-served responses before the headers go out.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.wroteHeader = true
	rw.statusCode = code
	if storage.Degraded(rw.ctx) {
		rw.Header().Set(modeHeader, degradedMarker)
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		traceID := r.Header.Get(traceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(traceHeader, traceID)

		ctx := context.WithValue(r.Context(), traceKey{}, traceID)
		ctx = storage.WithDegradedFlag(ctx)
		rw := &responseWriter{ResponseWriter: w, ctx: ctx, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r.WithContext(ctx))

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		metrics.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		log.Printf("[http] trace=%s ip=%s %s %s %d %s",
			traceID, ClientIP(r), r.Method, r.URL.Path, rw.statusCode, elapsed.Round(time.Microsecond))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-DNS-Prefetch-Control", "on")
		h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(self)")
		next.ServeHTTP(w, r)
	})
}

func rateLimit(limiter *ratelimit.Limiter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.Allow(r.Context(), ClientIP(r)); err != nil {
				metrics.RateLimited.WithLabelValues(limiter.Policy).Inc()
				writeError(w, err, false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if err := h.Auth.Authenticate(cookie.Value); err != nil {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
