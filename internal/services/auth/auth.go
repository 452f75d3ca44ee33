package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jobtrack/internal/domain/models"
	jwtlib "jobtrack/internal/lib/jwt"
	"jobtrack/internal/lib/password"
	"jobtrack/internal/lib/sl"
	"jobtrack/internal/storage"

	"github.com/google/uuid"
)

// Auth owns the credential lifecycle: signup, login, refresh rotation and
// logout. Refresh tokens are single-use; their validity lives in the
// session store, keyed "{userID}:{tokenID}".
type Auth struct {
	logger   *slog.Logger
	users    UserStore
	sessions SessionStore
	codec    *jwtlib.Codec
}

type UserStore interface {
	SaveUserWithTenant(
		ctx context.Context,
		user *models.User,
		tenant *models.Tenant,
		membership *models.TenantMembership,
	) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	PutSession(ctx context.Context, key, token string, ttl time.Duration) error
	DeleteSession(ctx context.Context, key string) (int64, error)
}

var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	// with one message, so login cannot be used as an existence oracle.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("email already registered")
	// ErrInvalidToken covers forged, expired, wrong-type, replayed and
	// revoked refresh tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenPair is the response of every successful auth operation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// New returns a new instance of the Auth service.
func New(
	logger *slog.Logger,
	users UserStore,
	sessions SessionStore,
	codec *jwtlib.Codec,
) *Auth {
	return &Auth{
		logger:   logger,
		users:    users,
		sessions: sessions,
		codec:    codec,
	}
}

// Signup registers a new account. The user, their default tenant and the
// admin membership are created in one transaction; then a token pair is
// issued and the refresh token's revocation entry persisted.
func (a *Auth) Signup(
	ctx context.Context,
	email, username, firstName, lastName, plainPassword string,
) (*TokenPair, error) {
	const op = "auth.Signup"
	log := a.logger.With(slog.String("op", op))

	email = normalize(email)
	username = normalize(username)

	log.Info("signup request", slog.String("email", email))

	passHash, err := password.Hash(plainPassword)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		PassHash:  passHash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tenant := &models.Tenant{
		ID:        uuid.NewString(),
		Name:      username + "'s Workspace",
		CreatedAt: now,
	}
	membership := &models.TenantMembership{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TenantID:  tenant.ID,
		Role:      models.RoleAdmin,
		CreatedAt: now,
	}

	if err := a.users.SaveUserWithTenant(ctx, user, tenant, membership); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already registered")
			return nil, fmt.Errorf("%s: %w", op, ErrUserAlreadyExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("tenantID", tenant.ID),
	)

	return a.issueTokens(ctx, op, user.ID)
}

// Login authenticates by email and password and issues a fresh token pair.
func (a *Auth) Login(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	const op = "auth.Login"
	log := a.logger.With(slog.String("op", op))

	email = normalize(email)
	log.Info("login request", slog.String("email", email))

	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.IsActive || !password.Verify(plainPassword, user.PassHash) {
		log.Warn("invalid password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	log.Info("user logged in", slog.String("userID", user.ID))

	return a.issueTokens(ctx, op, user.ID)
}

// Refresh rotates a refresh token: the presented token is verified, its
// revocation entry atomically deleted, and a brand-new pair issued. The
// delete is the arbiter of the rotation race; presenting the same token
// twice fails the second time because the first use removed the entry.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.Refresh"
	log := a.logger.With(slog.String("op", op))
	log.Info("refresh request")

	// Signature, expiry and type are checked before any store lookup;
	// claims from an unverified token are never trusted.
	claims, err := a.codec.Verify(refreshToken, jwtlib.KindRefresh)
	if err != nil {
		log.Warn("refresh token failed verification")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	deleted, err := a.sessions.DeleteSession(ctx, sessionKey(claims.Subject, claims.TokenID))
	if err != nil {
		log.Error("failed to delete session entry", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		log.Warn("refresh token already used or revoked",
			slog.String("userID", claims.Subject))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	log.Info("tokens rotated", slog.String("userID", claims.Subject))

	return a.issueTokens(ctx, op, claims.Subject)
}

// Logout revokes a refresh token by deleting its session entry. Logging
// out a session that is not active fails the same way a bad token does.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"
	log := a.logger.With(slog.String("op", op))
	log.Info("logout request")

	claims, err := a.codec.Verify(refreshToken, jwtlib.KindRefresh)
	if err != nil {
		log.Warn("refresh token failed verification")
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	deleted, err := a.sessions.DeleteSession(ctx, sessionKey(claims.Subject, claims.TokenID))
	if err != nil {
		log.Error("failed to delete session entry", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		log.Warn("no active session for token", slog.String("userID", claims.Subject))
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	log.Info("user logged out", slog.String("userID", claims.Subject))
	return nil
}

// issueTokens mints an access/refresh pair and persists the refresh
// token's revocation entry with TTL equal to the token lifetime.
func (a *Auth) issueTokens(ctx context.Context, op string, userID string) (*TokenPair, error) {
	accessToken, err := a.codec.Issue(userID, jwtlib.KindAccess, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokenID := uuid.NewString()
	refreshToken, err := a.codec.Issue(userID, jwtlib.KindRefresh, tokenID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = a.sessions.PutSession(ctx, sessionKey(userID, tokenID), refreshToken, a.codec.RefreshTTL())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func sessionKey(userID, tokenID string) string {
	return userID + ":" + tokenID
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
