package jobboard

import (
	"github.com/goliatone/go-router"
)

// Authorize allows access only when the verified identity equals the
// identity named in the request. The comparison is exact: no case folding,
// no trimming.
func Authorize(verified, requested Identity) error {
	if verified == "" {
		return fail(ErrUnauthenticated)
	}
	if verified != requested {
		return fail(ErrForbidden, map[string]any{"requested": requested})
	}
	return nil
}

// OwnershipGuard rejects requests whose query parameter names an identity
// other than the verified one. It must run after the session gate.
func OwnershipGuard(queryKey, contextKey string, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			verified, _ := requestIdentity(ctx, contextKey)
			requested := ctx.Query(queryKey, "")

			if err := Authorize(verified, requested); err != nil {
				logger.Warn("ownership check failed",
					"verified", verified,
					"requested", requested,
				)
				return WriteError(ctx, logger, err)
			}

			return next(ctx)
		}
	}
}
