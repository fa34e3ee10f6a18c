package drift

import (
	"context"
	"testing"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receivedPayload(t *testing.T, producer *ChannelProducer) (ProducedPayload, bool) {
	t.Helper()

	select {
	case payload := <-producer.Payloads():
		return payload, true
	default:
		return ProducedPayload{}, false
	}
}

func TestEventProviderPublishesPassthrough(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	client.ShardCount.Store(1)

	producer := NewChannelProducer(4)
	client.producer = producer

	shard := NewShard(client, 0)

	msg := &discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: "ENTITLEMENT_CREATE",
		Data: driftjson.RawMessage(`{"id":"1"}`),
	}

	err := client.eventProvider.Dispatch(context.Background(), shard, msg, NewTrace())
	require.NoError(t, err)

	payload, ok := receivedPayload(t, producer)
	require.True(t, ok)

	assert.Equal(t, "ENTITLEMENT_CREATE", payload.Type)
	assert.Equal(t, "test", payload.Metadata.Identifier)
	assert.Equal(t, [2]int32{0, 1}, payload.Metadata.Shard)
	assert.Contains(t, payload.Trace, "publish")
	assert.JSONEq(t, `{"id":"1"}`, string(payload.Data))
}

func TestEventProviderEventBlacklist(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	client.Configuration.EventBlacklist = []string{discord.EventTypingStart}

	producer := NewChannelProducer(4)
	client.producer = producer

	shard := NewShard(client, 0)

	msg := &discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: discord.EventTypingStart,
		Data: driftjson.RawMessage(`{"channel_id":"1","user_id":"2","timestamp":1}`),
	}

	err := client.eventProvider.Dispatch(context.Background(), shard, msg, NewTrace())
	require.NoError(t, err)

	_, ok := receivedPayload(t, producer)
	assert.False(t, ok)
}

func TestEventProviderProduceBlacklist(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	client.Configuration.ProduceBlacklist = []string{discord.EventMessageCreate}

	producer := NewChannelProducer(4)
	client.producer = producer

	shard := NewShard(client, 0)

	msg := &discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: discord.EventMessageCreate,
		Data: driftjson.RawMessage(`{"id":"5","channel_id":"6","author":{"id":"7"},"content":"hello"}`),
	}

	err := client.eventProvider.Dispatch(context.Background(), shard, msg, NewTrace())
	require.NoError(t, err)

	// The event is still handled, only production is suppressed.
	message, ok := client.stateProvider.GetMessage(context.Background(), 5)
	require.True(t, ok)
	assert.Equal(t, "hello", message.Content)

	_, ok = receivedPayload(t, producer)
	assert.False(t, ok)
}

func TestBuiltinDispatchProviderNoHandler(t *testing.T) {
	t.Parallel()

	client := newTestClient(t)
	shard := NewShard(client, 0)

	provider := NewBuiltinDispatchProvider(false)

	msg := &discord.GatewayPayload{
		Op:   discord.GatewayOpDispatch,
		Type: "ENTITLEMENT_CREATE",
		Data: driftjson.RawMessage(`{}`),
	}

	_, ok, err := provider.Dispatch(context.Background(), shard, msg, NewTrace())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoDispatchHandler)
}

func TestExtraSet(t *testing.T) {
	t.Parallel()

	extra := NewExtra().Set("before", discord.Message{ID: 1, Content: "old"})

	raw, ok := (*extra)["before"]
	require.True(t, ok)

	var message discord.Message

	require.NoError(t, driftjson.Unmarshal(raw, &message))
	assert.Equal(t, "old", message.Content)
}
