package drift

import (
	"context"
	"testing"
	"time"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *waiterRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.waiters)
}

func TestWaitForDeliversMatchingEvent(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	type result struct {
		payload discord.GatewayPayload
		err     error
	}

	results := make(chan result, 1)

	go func() {
		payload, err := client.WaitFor(ctx, discord.EventMessageCreate, func(payload discord.GatewayPayload) bool {
			var message discord.MessageCreate

			if err := driftjson.Unmarshal(payload.Data, &message); err != nil {
				return false
			}

			return message.Content == "two"
		})

		results <- result{payload, err}
	}()

	require.Eventually(t, func() bool {
		return client.waiters.count() == 1
	}, time.Second, 5*time.Millisecond)

	// Wrong event type and failing check are both ignored.
	client.waiters.notify(&discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: discord.EventTypingStart,
		Data: driftjson.RawMessage(`{}`),
	})
	client.waiters.notify(&discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: discord.EventMessageCreate,
		Data: driftjson.RawMessage(`{"content":"one"}`),
	})

	assert.Equal(t, 1, client.waiters.count())

	data := []byte(`{"content":"two"}`)

	client.waiters.notify(&discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: discord.EventMessageCreate,
		Data: data,
	})

	got := <-results
	require.NoError(t, got.err)
	assert.Equal(t, discord.EventMessageCreate, got.payload.Type)
	assert.JSONEq(t, `{"content":"two"}`, string(got.payload.Data))

	// The delivered payload is detached from the read buffer.
	data[2] = 'X'
	assert.JSONEq(t, `{"content":"two"}`, string(got.payload.Data))

	assert.Equal(t, 0, client.waiters.count())
}

func TestWaitForTimesOut(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.WaitFor(ctx, discord.EventMessageCreate, nil)
	assert.ErrorIs(t, err, ErrWaitForTimeout)

	assert.Equal(t, 0, client.waiters.count())
}
