package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/dashboard"
)

type contextKey string

const identityKey contextKey = "identity"

// accessLog emits one structured log line per request.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("Request served")
		})
	}
}

// authenticate resolves the bearer credential into a dashboard identity
// and stores it on the request context. Missing or unresolvable
// credentials end the request with 401.
func authenticate(auth *dashboard.Authenticator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			id, err := auth.Resolve(r.Context(), token)
			if err != nil {
				logger.Warn().Err(err).Msg("Credential resolution failed")
				respondError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identityFrom returns the authenticated identity stored by the
// authenticate middleware.
func identityFrom(ctx context.Context) (dashboard.Identity, bool) {
	id, ok := ctx.Value(identityKey).(dashboard.Identity)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
