package drift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), nil)
	assert.ErrorIs(t, err, ErrClientMissingToken)

	_, err = NewClient(context.Background(), &Configuration{})
	assert.ErrorIs(t, err, ErrClientMissingToken)
}

func TestClientInitializeExplicitShardCount(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), &Configuration{
		Identifier: "test",
		BotToken:   "test-token",
		ShardCount: 2,
	})
	require.NoError(t, err)

	require.NoError(t, client.Initialize(context.Background()))

	assert.Equal(t, int32(2), client.ShardCount.Load())
	assert.Equal(t, 2, client.Shards.Count())

	shard, ok := client.Shards.Load(1)
	require.True(t, ok)
	assert.Equal(t, int32(1), shard.ShardID)
}

func TestClientInitializeShardIDSubset(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), &Configuration{
		Identifier: "test",
		BotToken:   "test-token",
		ShardCount: 8,
		ShardIDs:   "0-3",
	})
	require.NoError(t, err)

	require.NoError(t, client.Initialize(context.Background()))

	assert.Equal(t, int32(8), client.ShardCount.Load())
	assert.Equal(t, 4, client.Shards.Count())

	_, ok := client.Shards.Load(4)
	assert.False(t, ok)
}

func TestClientShardForGuild(t *testing.T) {
	t.Parallel()

	client, err := NewClient(context.Background(), &Configuration{
		Identifier: "test",
		BotToken:   "test-token",
		ShardCount: 2,
	})
	require.NoError(t, err)

	require.NoError(t, client.Initialize(context.Background()))

	// The shard id is (guild id >> 22) % shard count.
	shard, ok := client.Shard(1 << 22)
	require.True(t, ok)
	assert.Equal(t, int32(1), shard.ShardID)

	shard, ok = client.Shard(2 << 22)
	require.True(t, ok)
	assert.Equal(t, int32(0), shard.ShardID)
}
