package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/1karan0/chatAdmin/internal/app"
	"github.com/1karan0/chatAdmin/internal/ratelimit"
	"github.com/1karan0/chatAdmin/internal/util"
	"github.com/1karan0/chatAdmin/pkg/domain"
	"github.com/1karan0/chatAdmin/pkg/store"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App               *app.App
	Sessions          store.SessionStore
	EmbedLimiter      *ratelimit.FixedWindowLimiter
	TrustedProxies    *util.TrustedProxies
	InternalSecret    string
	ChatBackendURL    string
	WidgetCacheMaxAge int
	MaxUploadBytes    int64
}

// Server exposes the dashboard API and the public embed endpoints.
type Server struct {
	app            *app.App
	sessions       store.SessionStore
	embedLimiter   *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	internalSecret string
	backendOrigin  string
	widgetMaxAge   int
	maxUploadBytes int64
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 16 << 20
	}
	widgetMaxAge := cfg.WidgetCacheMaxAge
	if widgetMaxAge <= 0 {
		widgetMaxAge = 3600
	}
	s := &Server{
		app:            cfg.App,
		sessions:       cfg.Sessions,
		embedLimiter:   cfg.EmbedLimiter,
		trustedProxies: cfg.TrustedProxies,
		internalSecret: cfg.InternalSecret,
		backendOrigin:  strings.TrimRight(cfg.ChatBackendURL, "/"),
		widgetMaxAge:   widgetMaxAge,
		maxUploadBytes: maxUploadBytes,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("chatadmin", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.Handle("/api/auth/callback", s.withInternal(s.handleAuthCallback))
	s.mux.Handle("/api/auth/logout", s.withUser(s.handleLogout))

	// users
	s.mux.Handle("/api/users/me", s.withUser(s.handleMe))
	s.mux.Handle("/api/users/me/tenant", s.withUser(s.handleRetryTenant))

	// bots
	s.mux.Handle("/api/bots", s.withUser(s.handleBots))
	s.mux.Handle("/api/bots/", s.withUser(s.handleBotByID))

	// public embed surfaces
	s.mux.Handle("/embed/", s.withEmbedLimit(s.handleEmbed))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type userHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) withUser(next userHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, ok, err := s.sessions.GetUserIDByToken(token)
		if err != nil || !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		user, err := s.app.GetUser(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

// withInternal guards endpoints reserved for the OAuth front layer.
func (s *Server) withInternal(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.internalSecret == "" {
			writeError(w, http.StatusInternalServerError, "internal auth not configured")
			return
		}
		secret := r.Header.Get("x-internal-secret")
		if subtle.ConstantTimeCompare([]byte(secret), []byte(s.internalSecret)) != 1 {
			logger := util.LoggerFromContext(r.Context())
			logger.Warn("security_event",
				"event", "internal_secret_rejected",
				"path", r.URL.Path,
				"ip", s.clientIP(r))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	})
}

func (s *Server) withEmbedLimit(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.embedLimiter != nil && !s.embedLimiter.Allow(s.clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	})
}

func (s *Server) clientIP(r *http.Request) string {
	return util.ClientIP(r, s.trustedProxies)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeFor(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCodeFor(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "internal auth not configured":
		return "SYSTEM_INTERNAL_ERROR"
	case message == "unauthorized":
		return "AUTH_INVALID_TOKEN"
	case message == "forbidden":
		return "BOT_FORBIDDEN"
	case message == "bot not found":
		return "BOT_NOT_FOUND"
	case message == "bot not deployed":
		return "BOT_NOT_DEPLOYED"
	case message == "tenant not provisioned":
		return "TENANT_NOT_READY"
	case message == "knowledge item not found":
		return "KNOWLEDGE_NOT_FOUND"
	case message == "too many requests":
		return "RATE_LIMITED"
	case message == "invalid json body":
		return "REQUEST_INVALID_BODY"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case message == "not found":
		return "SYSTEM_NOT_FOUND"
	}

	switch status {
	case http.StatusBadRequest:
		return "REQUEST_INVALID"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusForbidden:
		return "BOT_FORBIDDEN"
	case http.StatusNotFound:
		return "BOT_NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	case http.StatusBadGateway:
		return "BACKEND_UNAVAILABLE"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
