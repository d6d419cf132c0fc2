package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Unauthorized("no credential"), http.StatusUnauthorized},
		{BadCredential("bad token"), http.StatusBadRequest},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("raced"), http.StatusConflict},
		{LinkInvalid("bad link"), http.StatusNotFound},
		{LinkExpired("expired"), http.StatusGone},
		{PasswordRequired("password"), http.StatusUnauthorized},
		{PasswordIncorrect("wrong"), http.StatusForbidden},
		{Infrastructure(errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), "for %v", tc.err)
	}
}

func TestUnclassifiedErrorsAreInfrastructure(t *testing.T) {
	err := errors.New("some driver fault")
	assert.Equal(t, KindInfrastructure, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, Status(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("inviting: %w", NotFound("user not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, Status(err))
}

func TestInfrastructureUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Infrastructure(cause)
	assert.ErrorIs(t, err, cause)
}
