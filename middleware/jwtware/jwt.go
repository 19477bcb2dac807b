package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "cookie:token"
	// ErrJWTMissingOrMalformed is returned by extractors that find no token
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// Claims is what a validated token exposes to the request pipeline
type Claims interface {
	Identity() string
}

// TokenValidator verifies a raw token
type TokenValidator interface {
	Validate(tokenString string) (Claims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator
type TokenValidatorFunc func(tokenString string) (Claims, error)

// Validate satisfies TokenValidator
func (f TokenValidatorFunc) Validate(tokenString string) (Claims, error) {
	return f(tokenString)
}

// ValidationListener is invoked after a token has been validated
type ValidationListener func(ctx router.Context, claims Claims) error

type Config struct {
	// Filter skips the gate when it returns true
	Filter func(router.Context) bool
	// ErrorHandler answers rejected requests. Defaults to a 401 JSON body.
	ErrorHandler router.ErrorHandler
	// ContextKey is the locals key the claims are stored under
	ContextKey string
	// TokenLookup is a comma separated list of source:name pairs, e.g.
	// "cookie:token,header:Authorization"
	TokenLookup string
	AuthScheme  string
	// TokenValidator is required
	TokenValidator TokenValidator
	// ContextEnricher propagates claims to the standard context
	ContextEnricher     func(c context.Context, claims Claims) context.Context
	ValidationListeners []ValidationListener
}

// New returns the session gate. Requests that carry no token or a token the
// validator rejects never reach the wrapped handler.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return next(ctx)
			}

			raw, err := ExtractRawTokenFromContext(ctx, extractors)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if claims == nil || claims.Identity() == "" {
				return cfg.ErrorHandler(ctx, ErrJWTMissingOrMalformed)
			}

			if err := cfg.runValidationListeners(ctx, claims); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return next(ctx)
		}
	}
}

// ExtractRawTokenFromContext returns the first token any extractor finds
func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	err := ErrJWTMissingOrMalformed
	for _, extractor := range extractors {
		raw, xerr := extractor(ctx)
		if raw != "" && xerr == nil {
			return raw, nil
		}
		if xerr != nil {
			err = xerr
		}
	}
	return "", err
}

// GetDefaultConfig fills in defaults. It panics without a TokenValidator.
func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("JOBS: session middleware configuration: TokenValidator is required.")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// DefaultErrorHandler answers every rejection with the same 401 body so
// callers cannot tell a missing token from a bad one.
func DefaultErrorHandler(c router.Context, _ error) error {
	return c.JSON(router.StatusUnauthorized, map[string]any{
		"message": "unauthorized",
	})
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, claims Claims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return err
		}
	}
	return nil
}

type JWTExtractor func(c router.Context) (string, error)

// GetExtractors parses a lookup string such as "cookie:token,header:Authorization"
func GetExtractors(tokenLookup string, authScheme string) []JWTExtractor {
	var extractors []JWTExtractor
	for _, part := range strings.Split(tokenLookup, ",") {
		source, name, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		switch strings.TrimSpace(source) {
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		}
	}
	return extractors
}

func fromCookie(name string) JWTExtractor {
	return func(c router.Context) (string, error) {
		if token := c.Cookies(name); token != "" {
			return token, nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func fromHeader(header, scheme string) JWTExtractor {
	scheme = strings.TrimSpace(scheme)
	return func(c router.Context) (string, error) {
		value := c.GetString(header, "")
		l := len(scheme)
		if l > 0 && len(value) > l+1 && strings.EqualFold(value[:l], scheme) {
			return strings.TrimSpace(value[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}
