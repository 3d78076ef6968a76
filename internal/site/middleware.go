package site

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/rmacdonaldsmith/planflow-go/internal/metrics"
)

// ContextKey type for context keys to avoid collisions
type ContextKey string

const (
	// UserKey is the context key for the authenticated user
	UserKey ContextKey = "user"
	// RequestIDKey is the context key for the request ID
	RequestIDKey ContextKey = "request_id"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// Middleware provides HTTP middleware functions
type Middleware struct {
	auth   *SessionAuth
	logger logr.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth *SessionAuth, logger logr.Logger) *Middleware {
	return &Middleware{auth: auth, logger: logger}
}

// AuthRequired accepts a valid session cookie or Basic credentials. A
// successful Basic login sets a session cookie for later requests.
func (m *Middleware) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			if claims, err := m.auth.ValidateToken(cookie.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserKey, claims.User)))
				return
			}
		}

		user, ok := m.auth.CheckBasic(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="planflow", charset="UTF-8"`)
			writeError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		token, expiresAt, err := m.auth.GenerateToken(user)
		if err != nil {
			m.logger.Error(err, "Failed to issue session")
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				Expires:  expiresAt,
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserKey, user)))
	})
}

// RejectTraversal answers 400 for paths with ".." segments or NUL bytes.
// It must wrap the mux, which would otherwise redirect such paths.
func (m *Middleware) RejectTraversal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unsafePath(r.URL.Path) || unsafePath(r.URL.RawPath) {
			writeError(w, "Invalid path", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Logging logs every request with its status and a request ID.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID)))

		metrics.RecordSiteRequest(rec.status)
		m.logger.V(1).Info("Request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration", time.Since(start), "requestID", requestID)
	})
}

// Recovery middleware recovers from panics and returns 500 error
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error(fmt.Errorf("panic: %v", rec), "Handler panicked", "path", r.URL.Path)
				writeError(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// GetUser extracts the authenticated user from the request context
func GetUser(r *http.Request) string {
	if user, ok := r.Context().Value(UserKey).(string); ok {
		return user
	}
	return ""
}

// GetRequestID extracts the request ID from the request context
func GetRequestID(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func unsafePath(p string) bool {
	if strings.ContainsRune(p, 0) {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// writeError writes an error response as JSON
func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
