package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jobtrack/internal/domain/models"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/storage"

	"github.com/google/uuid"
)

// TenantHeader carries the out-of-band tenant identifier on scoped routes.
const TenantHeader = "X-Tenant-ID"

// authenticate resolves the bearer token into a user and stores it in the
// request context. Every auth failure answers the same 401, so a caller
// cannot tell a forged token from a deleted account; store failures keep
// their own status via writeServiceError.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeUnauthorized(w)
			return
		}

		claims, err := s.codec.Verify(token, jwtlib.KindAccess)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		if _, err := uuid.Parse(claims.Subject); err != nil {
			writeUnauthorized(w)
			return
		}

		// Access tokens are stateless; this lookup is the only way a
		// deleted or deactivated account is caught mid-lifetime.
		user, err := s.users.UserByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeUnauthorized(w)
				return
			}
			s.writeServiceError(w, err)
			return
		}
		if !user.IsActive {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireTenant resolves the X-Tenant-ID header against the authenticated
// user's memberships. Authenticated but not a member means 403.
func (s *Server) requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFrom(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}

		tenantID := r.Header.Get(TenantHeader)
		if tenantID == "" {
			writeValidationError(w, TenantHeader, "header is required")
			return
		}
		if _, err := uuid.Parse(tenantID); err != nil {
			writeValidationError(w, TenantHeader, "must be a valid UUID")
			return
		}

		if _, err := s.tenants.Membership(r.Context(), user.ID, tenantID); err != nil {
			if errors.Is(err, storage.ErrMembershipNotFound) {
				writeForbidden(w)
				return
			}
			s.writeServiceError(w, err)
			return
		}

		tenant, err := s.tenants.TenantByID(r.Context(), tenantID)
		if err != nil {
			if errors.Is(err, storage.ErrTenantNotFound) {
				writeForbidden(w)
				return
			}
			s.writeServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyTenant, tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func userFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(*models.User)
	return user, ok
}

func tenantFrom(ctx context.Context) (*models.Tenant, bool) {
	tenant, ok := ctx.Value(ctxKeyTenant).(*models.Tenant)
	return tenant, ok
}
