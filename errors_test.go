package jobboard_test

import (
	stderrors "errors"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	"github.com/goliatone/go-jobboard"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "nil", err: nil, status: 200},
		{name: "unauthenticated", err: jobboard.ErrUnauthenticated.Clone(), status: 401},
		{name: "expired", err: jobboard.ErrTokenExpired.Clone(), status: 401},
		{name: "malformed token", err: jobboard.ErrTokenMalformed.Clone(), status: 401},
		{name: "forbidden", err: jobboard.ErrForbidden.Clone(), status: 403},
		{name: "not found", err: jobboard.ErrNotFound.Clone(), status: 404},
		{name: "malformed input", err: jobboard.ErrMalformedInput.Clone(), status: 400},
		{name: "validation", err: errors.New("bad", errors.CategoryValidation), status: 400},
		{name: "plain error", err: stderrors.New("boom"), status: 500},
		{name: "external", err: errors.Wrap(stderrors.New("io"), errors.CategoryExternal, "store failure"), status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, jobboard.HTTPStatus(tt.err))
		})
	}
}

func TestTokenErrorClassifiers(t *testing.T) {
	expired := jobboard.ErrTokenExpired.Clone()
	assert.True(t, jobboard.IsTokenExpiredError(expired))
	assert.False(t, jobboard.IsMalformedError(expired))
	assert.True(t, jobboard.IsUnauthenticated(expired))

	malformed := jobboard.ErrTokenMalformed.Clone()
	assert.True(t, jobboard.IsMalformedError(malformed))
	assert.False(t, jobboard.IsTokenExpiredError(malformed))

	assert.False(t, jobboard.IsTokenExpiredError(nil))
	assert.False(t, jobboard.IsMalformedError(stderrors.New("token is malformed")))
}

func TestCategoryClassifiers(t *testing.T) {
	assert.True(t, jobboard.IsForbidden(jobboard.ErrForbidden.Clone()))
	assert.False(t, jobboard.IsUnauthenticated(jobboard.ErrForbidden.Clone()))

	assert.True(t, jobboard.IsNotFound(jobboard.ErrNotFound.Clone()))
	assert.False(t, jobboard.IsNotFound(nil))

	assert.True(t, jobboard.IsMalformedInput(jobboard.ErrMalformedInput.Clone()))
	assert.False(t, jobboard.IsMalformedInput(jobboard.ErrNotFound.Clone()))

	assert.False(t, jobboard.IsStoreFailure(stderrors.New("boom")))
}

func TestSentinelsAreNotMutatedByClones(t *testing.T) {
	clone := jobboard.ErrForbidden.Clone().WithMetadata(map[string]any{"requested": "bob@example.com"})
	assert.Equal(t, "bob@example.com", clone.Metadata["requested"])
	assert.NotContains(t, jobboard.ErrForbidden.Metadata, "requested")
}
