// Package api exposes the HTTP surface: the four auth routes, the
// tenant-scoped application routes, and the access guard that turns a
// bearer token into an authenticated principal.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"jobtrack/internal/domain/models"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/services/auth"

	"github.com/go-chi/chi/v5"
)

// AuthService is the slice of the auth service the handlers need.
type AuthService interface {
	Signup(ctx context.Context, email, username, firstName, lastName, password string) (*auth.TokenPair, error)
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UserProvider resolves an authenticated subject into a user row.
type UserProvider interface {
	UserByID(ctx context.Context, userID string) (*models.User, error)
}

// TenantProvider resolves tenant-scoped authorization.
type TenantProvider interface {
	Membership(ctx context.Context, userID, tenantID string) (*models.TenantMembership, error)
	TenantByID(ctx context.Context, tenantID string) (*models.Tenant, error)
}

// ApplicationStore persists the tenant's job applications.
type ApplicationStore interface {
	SaveApplication(ctx context.Context, app *models.Application) error
	ApplicationsByTenant(ctx context.Context, tenantID string) ([]*models.Application, error)
}

type Server struct {
	logger  *slog.Logger
	auth    AuthService
	users   UserProvider
	tenants TenantProvider
	apps    ApplicationStore
	codec   *jwtlib.Codec
}

func New(
	logger *slog.Logger,
	authService AuthService,
	users UserProvider,
	tenants TenantProvider,
	apps ApplicationStore,
	codec *jwtlib.Codec,
) *Server {
	return &Server{
		logger:  logger,
		auth:    authService,
		users:   users,
		tenants: tenants,
		apps:    apps,
		codec:   codec,
	}
}

// Handler builds the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/auth/me", s.handleMe)

			r.Group(func(r chi.Router) {
				r.Use(s.requireTenant)

				r.Route("/applications", func(r chi.Router) {
					r.Get("/", s.handleListApplications)
					r.Post("/", s.handleCreateApplication)
				})
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
