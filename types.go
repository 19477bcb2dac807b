package jobboard

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging contract used across the package. It matches the
// method set of glog.Logger so a go-logger instance can be passed directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds session and board options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetTokenExpiration() time.Duration
	GetContextKey() string
	GetCookieName() string
	GetCookieDomain() string
	GetCookieSameSite() string
	GetEnvironment() string
	GetEnrichConcurrency() int
}

// Identity is the verified, email shaped subject of a session
type Identity = string

// TokenIssuer mints session tokens for an identity
type TokenIssuer interface {
	Issue(identity Identity) (string, error)
}

// TokenVerifier turns a token back into a session
type TokenVerifier interface {
	Verify(token string) (*Session, error)
}

// JobFinder is the lookup the enrichment join depends on
type JobFinder interface {
	GetByID(ctx context.Context, id string) (*Job, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] JOBS " + line(msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] JOBS " + line(msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] JOBS " + line(msg, args))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] JOBS " + line(msg, args))
}

func line(msg string, args []any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	b.WriteString("\n")
	return b.String()
}
