package jobboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-jobboard/middleware/jwtware"
)

// DefaultTokenExpiration is the session lifetime when none is configured
const DefaultTokenExpiration = time.Hour

// TokenService issues and verifies session tokens
type TokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
	logger     Logger
}

var (
	_ TokenIssuer   = (*TokenService)(nil)
	_ TokenVerifier = (*TokenService)(nil)
)

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithClock replaces the wall clock, used for expiry checks and issue times
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a TokenService from config. The signing key is
// read once here and never leaves the service.
func NewTokenService(cfg Config, opts ...TokenServiceOption) (*TokenService, error) {
	key := cfg.GetSigningKey()
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("signing key must not be empty", errors.CategoryInternal)
	}

	expiration := cfg.GetTokenExpiration()
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}

	ts := &TokenService{
		signingKey: []byte(key),
		expiration: expiration,
		issuer:     cfg.GetIssuer(),
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts, nil
}

// Expiration returns the lifetime of issued tokens
func (ts *TokenService) Expiration() time.Duration {
	return ts.expiration
}

// Issue signs a token for identity valid from now for the configured lifetime
func (ts *TokenService) Issue(identity Identity) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", fail(ErrMalformedInput, map[string]any{"field": "email"})
	}

	now := ts.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiration)),
		},
		Email: identity,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the session.
// A token verified at or after its expiry instant is rejected.
func (ts *TokenService) Verify(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, fail(ErrUnauthenticated)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fail(ErrTokenExpired)
		}
		ts.logger.Debug("session token rejected", "error", err)
		return nil, errors.Wrap(err, errors.CategoryAuth, ErrTokenMalformed.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Identity() == "" {
		return nil, fail(ErrTokenMalformed)
	}

	return sessionFromClaims(claims), nil
}

// Validator adapts the service to the session middleware
func (ts *TokenService) Validator() jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(tokenString string) (jwtware.Claims, error) {
		session, err := ts.Verify(tokenString)
		if err != nil {
			return nil, err
		}
		return session, nil
	})
}
