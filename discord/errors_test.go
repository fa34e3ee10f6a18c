package discord_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/driftchat/drift/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRestError(status int, body string) *discord.RestError {
	req, _ := http.NewRequest(http.MethodGet, "https://discord.com/api/v10/test", nil)

	resp := &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Request:    req,
	}

	return discord.NewRestError(req, resp, []byte(body))
}

func TestRestErrorSentinels(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, newRestError(http.StatusBadRequest, `{}`), discord.ErrBadRequest)
	assert.ErrorIs(t, newRestError(http.StatusForbidden, `{}`), discord.ErrForbidden)
	assert.ErrorIs(t, newRestError(http.StatusNotFound, `{}`), discord.ErrNotFound)
	assert.ErrorIs(t, newRestError(http.StatusTooManyRequests, `{}`), discord.ErrRateLimited)

	var restErr *discord.RestError

	err := newRestError(http.StatusNotFound, `{"message":"Unknown Channel","code":10003}`)
	require.True(t, errors.As(error(err), &restErr))
	assert.Equal(t, "Unknown Channel", restErr.Message.Message)
	assert.Equal(t, int32(10003), restErr.Message.Code)
}

func TestRestErrorUnknownStatusHasNoSentinel(t *testing.T) {
	t.Parallel()

	err := newRestError(http.StatusInternalServerError, `{}`)

	assert.NotErrorIs(t, err, discord.ErrBadRequest)
	assert.NotErrorIs(t, err, discord.ErrNotFound)
}
