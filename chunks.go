package drift

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/driftchat/drift/discord"
)

var MemberChunkTimeout = time.Second * 3

const memberChunkRequestLimit = 100

type GuildChunk struct {
	complete        *atomic.Bool
	chunkingChannel chan GuildChunkPartial
	startedAt       *atomic.Pointer[time.Time]
	completedAt     *atomic.Pointer[time.Time]
}

type GuildChunkPartial struct {
	chunkIndex int32
	chunkCount int32
	nonce      string
}

// RequestGuildMembers validates and sends an offline-member request,
// then blocks until every chunk for the generated nonce has arrived or
// the wait times out. An empty query with a zero limit requests the full
// member list.
func (shard *Shard) RequestGuildMembers(ctx context.Context, guildID discord.Snowflake, query string, limit int32, userIDs []discord.Snowflake, presences bool) error {
	if len(userIDs) > 0 && query != "" {
		return fmt.Errorf("%w: query and user_ids are mutually exclusive", ErrInvalidArgument)
	}

	if len(userIDs) > memberChunkRequestLimit {
		return fmt.Errorf("%w: at most %d user_ids per request", ErrInvalidArgument, memberChunkRequestLimit)
	}

	if limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidArgument)
	}

	// A guild that is neither large nor unavailable already delivered its
	// full member list on GUILD_CREATE; there is nothing to request.
	if guild, ok := shard.client.stateProvider.GetGuild(ctx, guildID); ok && !guild.Large && !guild.Unavailable {
		return fmt.Errorf("%w: guild %d has no offline members", ErrInvalidArgument, guildID)
	}

	guildChunk, ok := shard.client.guildChunks.Load(guildID)
	if !ok {
		guildChunk = &GuildChunk{
			complete:        &atomic.Bool{},
			chunkingChannel: make(chan GuildChunkPartial),
			startedAt:       &atomic.Pointer[time.Time]{},
			completedAt:     &atomic.Pointer[time.Time]{},
		}

		shard.client.guildChunks.Store(guildID, guildChunk)
	}

	guildChunk.complete.Store(false)

	now := time.Now()
	guildChunk.startedAt.Store(&now)

	nonce := randomHex(16)

	err := shard.SendEvent(ctx, discord.GatewayOpRequestGuildMembers, discord.RequestGuildMembers{
		GuildID:   guildID,
		Query:     query,
		Limit:     limit,
		UserIDs:   userIDs,
		Presences: presences,
		Nonce:     nonce,
	})
	if err != nil {
		return fmt.Errorf("failed to request guild members: %w", err)
	}

	var chunksReceived, totalChunks int32

	timeout := time.NewTimer(MemberChunkTimeout)
	defer timeout.Stop()

	for {
		select {
		case guildChunkPartial := <-guildChunk.chunkingChannel:
			// Chunks from stale requests carry a different nonce.
			if guildChunkPartial.nonce != nonce {
				continue
			}

			chunksReceived++
			totalChunks = guildChunkPartial.chunkCount

			timeout.Reset(MemberChunkTimeout)

			shard.Logger.Debug("Received chunk", "chunks_received", chunksReceived, "total_chunks", totalChunks)

			if chunksReceived >= totalChunks {
				guildChunk.complete.Store(true)

				now = time.Now()
				guildChunk.completedAt.Store(&now)

				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			shard.Logger.Error("Timeout while waiting for guild members", "guild_id", guildID)

			return ErrChunkingTimeout
		}
	}
}

// ChunkGuild requests the full offline member list for a guild when the
// cache holds fewer members than the guild reports.
func (shard *Shard) ChunkGuild(ctx context.Context, guildID discord.Snowflake, always bool) error {
	shard.Logger.Debug("Chunking guild", "guild_id", guildID)

	guildMembers, _ := shard.client.stateProvider.GetGuildMembers(ctx, guildID)
	memberCount := len(guildMembers)

	guild, _ := shard.client.stateProvider.GetGuild(ctx, guildID)

	if always || int(guild.MemberCount) > memberCount {
		err := shard.RequestGuildMembers(ctx, guildID, "", 0, nil, false)
		if err != nil {
			return err
		}
	}

	return nil
}

func (shard *Shard) chunkAllGuilds(ctx context.Context) chan struct{} {
	shard.Logger.Debug("Chunking all guilds")

	done := make(chan struct{})

	go func() {
		guildIDs := make([]discord.Snowflake, 0)

		shard.Guilds.Range(func(key discord.Snowflake, _ bool) bool {
			guildIDs = append(guildIDs, key)

			return true
		})

		for _, guildID := range guildIDs {
			err := shard.ChunkGuild(ctx, guildID, false)
			if err != nil {
				shard.Logger.Error("Failed to chunk guild", "error", err)
			}
		}

		shard.Logger.Debug("Chunked all guilds", "count", len(guildIDs))

		close(done)
	}()

	return done
}
