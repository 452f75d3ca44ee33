package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobtrack/internal/api"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/services/auth"
	"jobtrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture(t *testing.T, stub *stubAuth) http.Handler {
	t.Helper()

	codec, err := jwtlib.NewCodec("HS256", "handler-access-secret", "handler-refresh-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := api.New(logger, stub, &fakeUsers{}, &fakeTenants{}, &fakeApps{}, codec)
	return server.Handler()
}

func post(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const validSignupBody = `{
	"email": "alice@example.com",
	"username": "alice",
	"first_name": "Alice",
	"last_name": "Smith",
	"password": "StrongPass123!"
}`

func TestSignupReturns201WithTokenPair(t *testing.T) {
	stub := &stubAuth{pair: &auth.TokenPair{AccessToken: "acc", RefreshToken: "ref"}}
	handler := newHandlerFixture(t, stub)

	rec := post(handler, "/api/v1/auth/signup", validSignupBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"acc"`)
	assert.Contains(t, rec.Body.String(), `"refresh_token":"ref"`)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)
}

func TestSignupDuplicateEmailReturns409(t *testing.T) {
	stub := &stubAuth{err: auth.ErrUserAlreadyExists}
	handler := newHandlerFixture(t, stub)

	rec := post(handler, "/api/v1/auth/signup", validSignupBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	handler := newHandlerFixture(t, &stubAuth{})

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad json", `{`, "body"},
		{"bad email", `{"email":"nope","username":"alice","first_name":"A","last_name":"B","password":"StrongPass123!"}`, "email"},
		{"short username", `{"email":"a@x.com","username":"ab","first_name":"A","last_name":"B","password":"StrongPass123!"}`, "username"},
		{"missing first name", `{"email":"a@x.com","username":"alice","first_name":"","last_name":"B","password":"StrongPass123!"}`, "first_name"},
		{"short password", `{"email":"a@x.com","username":"alice","first_name":"A","last_name":"B","password":"short"}`, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(handler, "/api/v1/auth/signup", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.field)
		})
	}
}

func TestLoginBadCredentialsReturns401(t *testing.T) {
	stub := &stubAuth{err: auth.ErrInvalidCredentials}
	handler := newHandlerFixture(t, stub)

	rec := post(handler, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"WrongPass123!"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshInvalidTokenReturns401(t *testing.T) {
	stub := &stubAuth{err: auth.ErrInvalidToken}
	handler := newHandlerFixture(t, stub)

	rec := post(handler, "/api/v1/auth/refresh", `{"refresh_token":"stale"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshMissingTokenReturns400(t *testing.T) {
	handler := newHandlerFixture(t, &stubAuth{})

	rec := post(handler, "/api/v1/auth/refresh", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutReturnsConfirmation(t *testing.T) {
	handler := newHandlerFixture(t, &stubAuth{})

	rec := post(handler, "/api/v1/auth/logout", `{"refresh_token":"live"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
}

func TestStoreOutageReturns503(t *testing.T) {
	stub := &stubAuth{err: storage.ErrUnavailable}
	handler := newHandlerFixture(t, stub)

	rec := post(handler, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"StrongPass123!"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	handler := newHandlerFixture(t, &stubAuth{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
