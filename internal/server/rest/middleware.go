package rest

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/petnest/internal/common"
	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	msgTokenMissing   = "Session token is missing"
	msgTokenInvalid   = "Invalid token"
	msgTokenExpired   = "Session has expired"
	msgSessionInvalid = "Invalid or expired session"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		ctx := logging.ContextWith(r.Context(), "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				h.log.Error(r.Context(), "panic recovered", "method", r.Method, "path", r.URL.Path, "panic", rec)
				writeError(w, http.StatusInternalServerError, msgServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	return r.ResponseWriter.Write(p)
}

// accessLogMiddleware logs every request and feeds the HTTP metrics, labelled
// by chi route pattern so path parameters do not explode cardinality.
func (h *Handler) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveHTTP(r.Method, route, status, elapsed)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		switch {
		case status >= 500:
			h.log.Error(r.Context(), "http request completed", fields...)
		case status >= 400:
			h.log.Warn(r.Context(), "http request completed", fields...)
		default:
			h.log.Info(r.Context(), "http request completed", fields...)
		}
	})
}

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// authGate admits requests carrying a validly signed token that still has a
// live server-side session, and binds the user id and token to the context.
func (h *Handler) authGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		userID, err := h.tokens.Verify(token)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, msgTokenExpired)
				return
			}
			writeError(w, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		if _, err := h.sessions.FindActive(r.Context(), token); err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				h.log.Error(r.Context(), "session lookup failed", "user_id", userID, "error", err)
			}
			writeError(w, http.StatusUnauthorized, msgSessionInvalid)
			return
		}

		ctx := logging.ContextWith(withSession(r.Context(), userID, token), "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
