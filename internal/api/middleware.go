// internal/api/middleware.go
package api

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crtc/courtbook/internal/api/authz"
	"github.com/crtc/courtbook/internal/db"
)

const (
	apiKeyHeader   = "X-Api-Auth"
	memberIDHeader = "X-Member-Id"

	authLookupTimeout = 5 * time.Second
)

type Middleware func(http.Handler) http.Handler

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Context().Value("request_id").(string)).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithAuth resolves the caller identity forwarded by the upstream identity
// proxy. The proxy authenticates the session and forwards the member id plus
// a shared key; this middleware verifies the key and loads the member row.
// Requests without identity headers pass through unauthenticated; handlers
// that need a caller reject them.
func WithAuth(queries *db.Queries, sharedKey string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.Ctx(r.Context())

			// Load balancer probes hit /health directly, without the proxy.
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			if sharedKey != "" {
				provided := r.Header.Get(apiKeyHeader)
				if subtle.ConstantTimeCompare([]byte(provided), []byte(sharedKey)) != 1 {
					logger.Warn().Str("path", r.URL.Path).Msg("Request rejected: bad API key")
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}

			memberID := strings.TrimSpace(r.Header.Get(memberIDHeader))
			if memberID == "" {
				next.ServeHTTP(w, r)
				return
			}

			queryCtx, cancel := context.WithTimeout(r.Context(), authLookupTimeout)
			defer cancel()

			member, err := queries.GetMember(queryCtx, memberID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					logger.Warn().Str("member_id", memberID).Msg("Unknown member id on request")
					next.ServeHTTP(w, r)
					return
				}
				logger.Error().Err(err).Str("member_id", memberID).Msg("Failed to resolve member")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx := authz.ContextWithMember(r.Context(), &authz.AuthMember{
				ID:        member.ID,
				FirstName: member.FirstName,
				LastName:  member.LastName,
				Role:      member.Role,
				Status:    member.Status,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
