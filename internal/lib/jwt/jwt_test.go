package jwt_test

import (
	"testing"
	"time"

	jwtlib "jobtrack/internal/lib/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func newTestCodec(t *testing.T, accessTTL, refreshTTL time.Duration) *jwtlib.Codec {
	t.Helper()
	codec, err := jwtlib.NewCodec("HS256", accessSecret, refreshSecret, accessTTL, refreshTTL)
	require.NoError(t, err)
	return codec
}

func TestNewCodecRejectsBadConfig(t *testing.T) {
	_, err := jwtlib.NewCodec("HS256", "same", "same", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = jwtlib.NewCodec("HS256", "", refreshSecret, time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = jwtlib.NewCodec("ES256", accessSecret, refreshSecret, time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = jwtlib.NewCodec("bogus", accessSecret, refreshSecret, time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessTokenRoundtrip(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	subject := uuid.NewString()

	token, err := codec.Issue(subject, jwtlib.KindAccess, "")
	require.NoError(t, err)

	claims, err := codec.Verify(token, jwtlib.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, jwtlib.KindAccess, claims.Kind)
	assert.Empty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt, 2*time.Second)
}

func TestRefreshTokenCarriesTokenID(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	subject := uuid.NewString()
	tokenID := uuid.NewString()

	token, err := codec.Issue(subject, jwtlib.KindRefresh, tokenID)
	require.NoError(t, err)

	claims, err := codec.Verify(token, jwtlib.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestIssueRefreshRequiresTokenID(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	_, err := codec.Issue(uuid.NewString(), jwtlib.KindRefresh, "")
	assert.Error(t, err)
}

func TestCrossTypeVerificationFails(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)
	subject := uuid.NewString()

	accessToken, err := codec.Issue(subject, jwtlib.KindAccess, "")
	require.NoError(t, err)
	refreshToken, err := codec.Issue(subject, jwtlib.KindRefresh, uuid.NewString())
	require.NoError(t, err)

	_, err = codec.Verify(accessToken, jwtlib.KindRefresh)
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)

	_, err = codec.Verify(refreshToken, jwtlib.KindAccess)
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)
}

func TestExpiredTokenFails(t *testing.T) {
	codec := newTestCodec(t, -time.Minute, -time.Minute)

	token, err := codec.Issue(uuid.NewString(), jwtlib.KindAccess, "")
	require.NoError(t, err)

	_, err = codec.Verify(token, jwtlib.KindAccess)
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)
}

func TestTamperedTokenFails(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	token, err := codec.Issue(uuid.NewString(), jwtlib.KindAccess, "")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = codec.Verify(tampered, jwtlib.KindAccess)
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)

	_, err = codec.Verify("not.a.token", jwtlib.KindAccess)
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)
}

func TestUnknownKindFails(t *testing.T) {
	codec := newTestCodec(t, time.Minute, time.Hour)

	token, err := codec.Issue(uuid.NewString(), jwtlib.KindAccess, "")
	require.NoError(t, err)

	_, err = codec.Verify(token, jwtlib.TokenKind("session"))
	assert.ErrorIs(t, err, jwtlib.ErrInvalidToken)
}
