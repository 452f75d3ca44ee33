package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two credential types. Each kind is signed
// with its own secret, so a token of one kind never verifies as the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// ErrInvalidToken is the single failure outcome of Verify. Bad signature,
// expiry, wrong kind and malformed input are deliberately not
// distinguishable by the caller.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded, verified claim set of a token.
type Claims struct {
	Subject   string
	Kind      TokenKind
	TokenID   string
	ExpiresAt time.Time
}

// Codec signs and verifies compact JWT credentials.
type Codec struct {
	method        jwt.SigningMethod
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec builds a codec for the given HMAC algorithm (HS256/HS384/HS512).
// The two secrets must be set and must differ.
func NewCodec(algorithm, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}

	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}

	return &Codec{
		method:        method,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime. It is also the
// TTL of the refresh token's session store entry.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// Issue signs a token of the given kind for subject. tokenID is embedded as
// the jti claim on refresh tokens and must be empty for access tokens.
func (c *Codec) Issue(subject string, kind TokenKind, tokenID string) (string, error) {
	secret, ttl, err := c.secretFor(kind)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":  subject,
		"type": string(kind),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	if kind == KindRefresh {
		if tokenID == "" {
			return "", errors.New("refresh token requires a token ID")
		}
		claims["jti"] = tokenID
	}

	token := jwt.NewWithClaims(c.method, claims)
	return token.SignedString(secret)
}

// Verify checks signature, expiry, kind and subject of a token against the
// expected kind's secret. Any failure collapses to ErrInvalidToken.
func (c *Codec) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret, _, err := c.secretFor(kind)
	if err != nil {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != c.method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if typ, _ := mapClaims["type"].(string); typ != string(kind) {
		return nil, ErrInvalidToken
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Subject: sub, Kind: kind}

	if exp, expErr := mapClaims.GetExpirationTime(); expErr == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}

	if kind == KindRefresh {
		jti, _ := mapClaims["jti"].(string)
		if jti == "" {
			return nil, ErrInvalidToken
		}
		claims.TokenID = jti
	}

	return claims, nil
}

func (c *Codec) secretFor(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case KindAccess:
		return c.accessSecret, c.accessTTL, nil
	case KindRefresh:
		return c.refreshSecret, c.refreshTTL, nil
	}
	return nil, 0, fmt.Errorf("unknown token kind: %q", kind)
}
