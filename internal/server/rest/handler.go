// Package rest is the JSON-over-HTTP transport of the PetNest API.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/petnest/internal/logging"
	"github.com/dmitrijs2005/petnest/internal/server/config"
	"github.com/dmitrijs2005/petnest/internal/server/metrics"
	"github.com/dmitrijs2005/petnest/internal/server/models"
	"github.com/dmitrijs2005/petnest/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

type IdentityService interface {
	Register(ctx context.Context, req services.RegisterRequest, meta models.SessionMetadata) (*services.AuthResult, error)
	Login(ctx context.Context, req services.LoginRequest, meta models.SessionMetadata) (*services.AuthResult, error)
	Check(ctx context.Context, userID int64) (*services.AuthResult, error)
	Logout(ctx context.Context, token string)
	ChangePassword(ctx context.Context, userID int64, req services.ChangePasswordRequest, meta models.SessionMetadata) error
	VerifyIdentity(ctx context.Context, req services.VerifyIdentityRequest) (*models.User, error)
	DirectReset(ctx context.Context, req services.DirectResetRequest, meta models.SessionMetadata) error
	CheckUsername(ctx context.Context, username string) (*services.UsernameLookup, error)
	GetUserByEmail(ctx context.Context, email string) (*services.EmailLookup, error)
	GetUserRoles(ctx context.Context, userID int64) ([]models.Role, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	Update(ctx context.Context, userID int64, req services.ProfileUpdateRequest, meta models.SessionMetadata) error
}

// TokenVerifier checks a signed token and returns the user id it carries.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	identity     IdentityService
	profile      ProfileService
	tokens       TokenVerifier
	sessions     services.SessionStore
	db           Pinger
	metrics      *metrics.Metrics
	log          logging.Logger
	cookieTTL    time.Duration
	cookieSecure bool
	trustProxy   bool
}

// NewHandler wires the transport. mtr may be nil.
func NewHandler(cfg *config.Config, log logging.Logger, identity IdentityService, profile ProfileService,
	tokens TokenVerifier, sessions services.SessionStore, db Pinger, mtr *metrics.Metrics) *Handler {
	return &Handler{
		identity:     identity,
		profile:      profile,
		tokens:       tokens,
		sessions:     sessions,
		db:           db,
		metrics:      mtr,
		log:          log.With("module", "http"),
		cookieTTL:    cfg.SessionValidityDuration,
		cookieSecure: cfg.CookieSecure,
		trustProxy:   cfg.TrustProxyHeaders,
	}
}

// Routes builds the router with the middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	if h.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(h.accessLogMiddleware)
	r.Use(h.recoverMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", h.metrics.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/verify_identity", h.verifyIdentity)
			r.Post("/direct_reset", h.directReset)
			r.Post("/check_username", h.checkUsername)
			r.Post("/get_user_by_email", h.getUserByEmail)
			r.Post("/get_user_roles", h.getUserRoles)

			r.Group(func(r chi.Router) {
				r.Use(h.authGate)
				r.Get("/check", h.check)
				r.Post("/logout", h.logout)
				r.Post("/change_password", h.changePassword)
			})
		})

		r.Route("/profile", func(r chi.Router) {
			r.Use(h.authGate)
			r.Get("/get", h.getProfile)
			r.Post("/update", h.updateProfile)
		})
	})

	return r
}

// decodeBody reads a JSON object from the request. An empty or malformed
// body is an error.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
