package jobboard

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// TextCodeStoreFailure tags errors raised by the persistence layer
const TextCodeStoreFailure = "STORE_FAILURE"

// ErrUnauthenticated is returned when a request has no usable session
var ErrUnauthenticated = errors.New("unauthorized", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("UNAUTHENTICATED")

// ErrTokenExpired is returned when the session token is at or past its expiry
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(errors.TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail structural or signature checks
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(errors.TextCodeTokenMalformed)

// ErrForbidden is returned when a verified identity asks for someone else's data
var ErrForbidden = errors.New("forbidden", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("FORBIDDEN")

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("NOT_FOUND")

// ErrMalformedInput is returned for ids and payloads we cannot interpret
var ErrMalformedInput = errors.New("malformed input", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("MALFORMED_INPUT")

// fail returns a fresh copy of a sentinel so callers can attach metadata
// without mutating the shared value.
func fail(sentinel *errors.Error, meta ...map[string]any) *errors.Error {
	err := sentinel.Clone()
	if len(meta) > 0 {
		err = err.WithMetadata(meta...)
	}
	return err
}

func storeFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CategoryExternal, "store failure").
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeStoreFailure).
		WithMetadata(map[string]any{"operation": op})
}

// IsUnauthenticated reports whether err means the caller has no valid session
func IsUnauthenticated(err error) bool {
	return errors.IsAuth(err)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, errors.TextCodeTokenExpired)
}

// IsMalformedError will check for malformed tokens
func IsMalformedError(err error) bool {
	return hasTextCode(err, errors.TextCodeTokenMalformed)
}

// IsForbidden reports an ownership mismatch
func IsForbidden(err error) bool {
	return errors.IsCategory(err, errors.CategoryAuthz)
}

// IsNotFound reports a missing record, including the repository's own
// not found errors.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.IsNotFound(err) || repository.IsRecordNotFound(err)
}

// IsMalformedInput reports bad ids or payloads, validation failures included
func IsMalformedInput(err error) bool {
	return errors.IsCategory(err, errors.CategoryBadInput) || errors.IsValidation(err)
}

// IsStoreFailure reports errors raised by the underlying store
func IsStoreFailure(err error) bool {
	return hasTextCode(err, TextCodeStoreFailure)
}

// HTTPStatus maps an error to the status code we answer with
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case IsUnauthenticated(err):
		return errors.CodeUnauthorized
	case IsForbidden(err):
		return errors.CodeForbidden
	case IsNotFound(err):
		return errors.CodeNotFound
	case IsMalformedInput(err):
		return errors.CodeBadRequest
	default:
		return errors.CodeInternal
	}
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
