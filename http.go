package jobboard

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// SessionCookies builds the cookie that carries the session token. Issue and
// Clear share one attribute template: a browser only drops a cookie when the
// clearing Set-Cookie matches name, path, domain and security attributes.
type SessionCookies struct {
	name       string
	domain     string
	secure     bool
	sameSite   string
	expiration time.Duration
	now        func() time.Time
}

// NewSessionCookies derives cookie attributes from config. Production
// deployments get Secure and SameSite=Strict unless COOKIE_SAME_SITE relaxes
// it; development keeps the plain Lax cookie a same origin setup needs.
func NewSessionCookies(cfg Config) *SessionCookies {
	sc := &SessionCookies{
		name:       cfg.GetCookieName(),
		domain:     cfg.GetCookieDomain(),
		expiration: cfg.GetTokenExpiration(),
		now:        time.Now,
	}

	if sc.name == "" {
		sc.name = "token"
	}

	if sc.expiration <= 0 {
		sc.expiration = DefaultTokenExpiration
	}

	if cfg.GetEnvironment() == EnvProduction {
		sc.secure = true
		sc.sameSite = "Strict"
	} else {
		sc.sameSite = "Lax"
	}

	if override := normalizeSameSite(cfg.GetCookieSameSite()); override != "" {
		sc.sameSite = override
	}

	// browsers refuse SameSite=None without Secure
	if sc.sameSite == "None" {
		sc.secure = true
	}

	return sc
}

// Name returns the cookie name
func (sc *SessionCookies) Name() string {
	return sc.name
}

// Issue returns the cookie that stores token
func (sc *SessionCookies) Issue(token string) *router.Cookie {
	c := sc.base()
	c.Value = token
	c.Expires = sc.now().Add(sc.expiration)
	return c
}

// Clear returns the cookie that makes the browser drop the session
func (sc *SessionCookies) Clear() *router.Cookie {
	c := sc.base()
	c.Value = ""
	c.Expires = time.Unix(0, 0)
	return c
}

// Set writes the session cookie on the response
func (sc *SessionCookies) Set(ctx router.Context, token string) {
	ctx.Cookie(sc.Issue(token))
}

// Delete writes the clearing cookie on the response
func (sc *SessionCookies) Delete(ctx router.Context) {
	ctx.Cookie(sc.Clear())
}

func (sc *SessionCookies) base() *router.Cookie {
	return &router.Cookie{
		Name:     sc.name,
		Path:     "/",
		Domain:   sc.domain,
		HTTPOnly: true,
		Secure:   sc.secure,
		SameSite: sc.sameSite,
	}
}

func normalizeSameSite(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return "Strict"
	case "lax":
		return "Lax"
	case "none":
		return "None"
	default:
		return ""
	}
}

// errorBody is the JSON shape of every error response
func errorBody(err error) map[string]any {
	body := map[string]any{}

	switch HTTPStatus(err) {
	case errors.CodeUnauthorized:
		body["message"] = "unauthorized"
	case errors.CodeForbidden:
		body["message"] = "forbidden"
	case errors.CodeInternal:
		body["message"] = "internal server error"
	default:
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			body["message"] = richErr.Message
			if v := richErr.ValidationMap(); len(v) > 0 {
				body["validation"] = v
			}
		} else {
			body["message"] = err.Error()
		}
	}

	return body
}

// WriteError maps err to a status code and JSON body. Store failures are
// logged with their metadata, the response stays generic.
func WriteError(ctx router.Context, logger Logger, err error) error {
	status := HTTPStatus(err)
	if status == errors.CodeInternal && logger != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			logger.Error("request failed",
				"error", richErr.Error(),
				"category", richErr.Category,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)
		} else {
			logger.Error("request failed", "error", err)
		}
	}
	return ctx.JSON(status, errorBody(err))
}
