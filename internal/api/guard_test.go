package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobtrack/internal/api"
	"jobtrack/internal/domain/models"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/services/auth"
	"jobtrack/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID map[string]*models.User
	err  error // forced failure for every lookup when set
}

func (f *fakeUsers) UserByID(_ context.Context, userID string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.byID[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

type fakeTenants struct {
	memberships map[string]*models.TenantMembership // keyed userID:tenantID
	tenants     map[string]*models.Tenant
	err         error // forced failure for every lookup when set
}

func (f *fakeTenants) Membership(_ context.Context, userID, tenantID string) (*models.TenantMembership, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.memberships[userID+":"+tenantID]
	if !ok {
		return nil, storage.ErrMembershipNotFound
	}
	return m, nil
}

func (f *fakeTenants) TenantByID(_ context.Context, tenantID string) (*models.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tenants[tenantID]
	if !ok {
		return nil, storage.ErrTenantNotFound
	}
	return t, nil
}

type fakeApps struct {
	saved []*models.Application
}

func (f *fakeApps) SaveApplication(_ context.Context, app *models.Application) error {
	f.saved = append(f.saved, app)
	return nil
}

func (f *fakeApps) ApplicationsByTenant(_ context.Context, tenantID string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range f.saved {
		if app.TenantID == tenantID {
			out = append(out, app)
		}
	}
	return out, nil
}

// stubAuth satisfies api.AuthService for guard tests that never hit it.
type stubAuth struct {
	pair *auth.TokenPair
	err  error
}

func (s *stubAuth) Signup(context.Context, string, string, string, string, string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuth) Login(context.Context, string, string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuth) Refresh(context.Context, string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubAuth) Logout(context.Context, string) error {
	return s.err
}

type guardFixture struct {
	handler http.Handler
	codec   *jwtlib.Codec
	user    *models.User
	tenant  *models.Tenant
	users   *fakeUsers
	tenants *fakeTenants
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	codec, err := jwtlib.NewCodec("HS256", "guard-access-secret", "guard-refresh-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	user := &models.User{
		ID:       uuid.NewString(),
		Email:    "alice@example.com",
		Username: "alice",
		IsActive: true,
	}
	tenant := &models.Tenant{ID: uuid.NewString(), Name: "alice's Workspace"}

	users := &fakeUsers{byID: map[string]*models.User{user.ID: user}}
	tenants := &fakeTenants{
		memberships: map[string]*models.TenantMembership{
			user.ID + ":" + tenant.ID: {
				ID:       uuid.NewString(),
				UserID:   user.ID,
				TenantID: tenant.ID,
				Role:     models.RoleAdmin,
			},
		},
		tenants: map[string]*models.Tenant{tenant.ID: tenant},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := api.New(logger, &stubAuth{}, users, tenants, &fakeApps{}, codec)

	return &guardFixture{
		handler: server.Handler(),
		codec:   codec,
		user:    user,
		tenant:  tenant,
		users:   users,
		tenants: tenants,
	}
}

func (f *guardFixture) accessTokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := f.codec.Issue(userID, jwtlib.KindAccess, "")
	require.NoError(t, err)
	return token
}

func (f *guardFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateMissingHeader(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	f := newGuardFixture(t)

	for _, header := range []string{"garbage", "Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", header)
		rec := f.do(req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	f := newGuardFixture(t)

	refreshToken, err := f.codec.Issue(f.user.ID, jwtlib.KindRefresh, uuid.NewString())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	rec := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	f := newGuardFixture(t)

	// A structurally valid token whose subject no longer exists.
	token := f.accessTokenFor(t, uuid.NewString())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := f.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateResolvesUser(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.user.Email)
}

func TestTenantScopeMissingHeader(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	rec := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTenantScopeNonMemberIsForbidden(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	req.Header.Set(api.TenantHeader, uuid.NewString())
	rec := f.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticateStoreOutageIs503(t *testing.T) {
	f := newGuardFixture(t)
	f.users.err = storage.ErrUnavailable

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	rec := f.do(req)

	// An outage during the user lookup is not an auth failure.
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTenantScopeStoreOutageIs503(t *testing.T) {
	f := newGuardFixture(t)
	f.tenants.err = storage.ErrUnavailable

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	req.Header.Set(api.TenantHeader, f.tenant.ID)
	rec := f.do(req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTenantScopeMemberIsAllowed(t *testing.T) {
	f := newGuardFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/applications", nil)
	req.Header.Set("Authorization", "Bearer "+f.accessTokenFor(t, f.user.ID))
	req.Header.Set(api.TenantHeader, f.tenant.ID)
	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
