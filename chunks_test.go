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

func TestRequestGuildMembersValidation(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	shard, client := newTestShard(t, conn)
	shard.conn = conn

	ctx := context.Background()

	err := shard.RequestGuildMembers(ctx, 1, "query", 0, []discord.Snowflake{1}, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	tooMany := make([]discord.Snowflake, memberChunkRequestLimit+1)
	for i := range tooMany {
		tooMany[i] = discord.Snowflake(i + 1)
	}

	err = shard.RequestGuildMembers(ctx, 1, "", 0, tooMany, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = shard.RequestGuildMembers(ctx, 1, "", -1, nil, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// A guild that is neither large nor unavailable is already fully
	// loaded and has no offline members to request.
	client.stateProvider.SetGuild(ctx, 2, discord.Guild{ID: 2, MemberCount: 3})

	err = shard.RequestGuildMembers(ctx, 2, "", 0, nil, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// Nothing invalid reaches the gateway.
	assert.Empty(t, conn.sent(t, discord.GatewayOpRequestGuildMembers))
}

func TestRequestGuildMembersCompletes(t *testing.T) {
	conn := newScriptedConn()
	shard, client := newTestShard(t, conn)
	shard.conn = conn

	guildID := discord.Snowflake(100)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()

	result := make(chan error, 1)

	go func() {
		result <- shard.RequestGuildMembers(ctx, guildID, "", 0, nil, false)
	}()

	// Wait for the request frame to learn the nonce.
	var nonce string

	require.Eventually(t, func() bool {
		requests := conn.sent(t, discord.GatewayOpRequestGuildMembers)
		if len(requests) == 0 {
			return false
		}

		var request discord.RequestGuildMembers

		require.NoError(t, driftjson.Unmarshal(requests[0].Data, &request))

		nonce = request.Nonce

		return true
	}, time.Second, 5*time.Millisecond)

	guildChunk, ok := client.guildChunks.Load(guildID)
	require.True(t, ok)

	// A chunk from a stale request is ignored.
	guildChunk.chunkingChannel <- GuildChunkPartial{chunkIndex: 0, chunkCount: 1, nonce: "stale"}

	guildChunk.chunkingChannel <- GuildChunkPartial{chunkIndex: 0, chunkCount: 2, nonce: nonce}
	guildChunk.chunkingChannel <- GuildChunkPartial{chunkIndex: 1, chunkCount: 2, nonce: nonce}

	require.NoError(t, <-result)
	assert.True(t, guildChunk.complete.Load())
	assert.NotNil(t, guildChunk.completedAt.Load())
}

func TestRequestGuildMembersTimesOut(t *testing.T) {
	conn := newScriptedConn()
	shard, _ := newTestShard(t, conn)
	shard.conn = conn

	previousTimeout := MemberChunkTimeout
	MemberChunkTimeout = 50 * time.Millisecond

	t.Cleanup(func() {
		MemberChunkTimeout = previousTimeout
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := shard.RequestGuildMembers(ctx, 100, "", 0, nil, false)
	assert.ErrorIs(t, err, ErrChunkingTimeout)
}

func TestChunkGuildSkipsFullyCachedGuild(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	shard, client := newTestShard(t, conn)
	shard.conn = conn

	ctx := context.Background()
	guildID := discord.Snowflake(100)

	client.stateProvider.SetGuild(ctx, guildID, discord.Guild{
		ID:          guildID,
		MemberCount: 1,
		Members: []discord.GuildMember{
			{User: &discord.User{ID: 1}},
		},
	})

	require.NoError(t, shard.ChunkGuild(ctx, guildID, false))

	assert.Empty(t, conn.sent(t, discord.GatewayOpRequestGuildMembers))
}
