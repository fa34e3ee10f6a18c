package drift

import (
	"context"
	"errors"
	"time"

	"github.com/driftchat/drift/discord"
)

const (
	ReadyTimeout = 1 * time.Second
)

func onDispatchEvent(shard *Shard, eventType string) {
	RecordEvent(shard.client.Configuration.Identifier, eventType)
}

// OnReady handles the READY event.
// It will go and mark guilds as unavailable and go through
// any GUILD_CREATE events for the next few seconds.
func OnReady(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, trace *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	var readyPayload discord.Ready

	err := unmarshalPayload(msg, &readyPayload)
	if err != nil {
		shard.Logger.Error("Failed to unmarshal ready payload", "error", err)

		return DispatchResult{nil, nil}, false, err
	}

	shard.Logger.Debug("Received READY payload")

	shard.sessionID.Store(&readyPayload.SessionID)
	shard.resumeGatewayURL.Store(&readyPayload.ResumeGatewayURL)

	shard.client.SetUser(&readyPayload.User)
	shard.SetMetadata()

	for _, guild := range readyPayload.Guilds {
		shard.UnavailableGuilds.Store(guild.ID, true)
		shard.LazyGuilds.Store(guild.ID, true)
		shard.Guilds.Store(guild.ID, true)
	}

	UpdateUnavailableGuilds(float64(shard.UnavailableGuilds.Count()))

	guildCreateEvents := 0

	readyTimeout := time.NewTicker(ReadyTimeout)

	shard.Logger.Debug("Starting lazy loading guilds")

ready:
	for {
		select {
		case <-readyTimeout.C:
			break ready
		default:
		}

		// Bound the read so a quiet stream cannot hold the window open
		// past its timeout.
		readCtx, cancelRead := context.WithTimeout(ctx, ReadyTimeout)
		msg, err := shard.read(readCtx, shard.conn)

		cancelRead()

		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				shard.Logger.Error("Encountered error during READY", "error", err)
			}

			break ready
		}

		if msg.Type == discord.EventGuildCreate {
			guildCreateEvents++

			readyTimeout.Reset(ReadyTimeout)
		}

		_, err = shard.OnEvent(ctx, msg, trace)
		if err != nil && !errors.Is(err, ErrNoDispatchHandler) {
			shard.Logger.Error("Failed to dispatch event", "error", err)
		}

		shard.gatewayPayloadPool.Put(msg)
	}

	readyTimeout.Stop()

	shard.Logger.Debug("Finished lazy loading guilds", "guilds", guildCreateEvents)

	select {
	case shard.ready <- struct{}{}:
	default:
	}

	if shard.client.Configuration.ChunkGuildsOnStart {
		shard.chunkAllGuilds(ctx)
	}

	return DispatchResult{nil, nil}, false, nil
}

func OnResumed(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	shard.Logger.Debug("Shard has resumed")

	select {
	case shard.ready <- struct{}{}:
	default:
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnGuildCreate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildCreatePayload discord.GuildCreate

	err := unmarshalPayload(msg, &guildCreatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if !guildCreatePayload.ID.IsNil() {
		ctx = WithGuildID(ctx, guildCreatePayload.ID)
	}

	for _, member := range guildCreatePayload.Members {
		if member.User != nil {
			shard.client.stateProvider.AddUserMutualGuild(ctx, member.User.ID, guildCreatePayload.ID)
		}
	}

	shard.client.stateProvider.SetGuild(ctx, guildCreatePayload.ID, discord.Guild(guildCreatePayload))

	shard.Guilds.Store(guildCreatePayload.ID, true)

	lazy, exists := shard.LazyGuilds.Load(guildCreatePayload.ID)

	if exists {
		shard.LazyGuilds.Delete(guildCreatePayload.ID)
	}

	unavailable, exists := shard.UnavailableGuilds.Load(guildCreatePayload.ID)

	if exists {
		shard.UnavailableGuilds.Delete(guildCreatePayload.ID)
		UpdateUnavailableGuilds(float64(shard.UnavailableGuilds.Count()))
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("lazy", lazy).Set("unavailable", unavailable),
	}, true, nil
}

// OnGuildUpdate patches the cached guild with the fields present in the
// payload. The previous record rides along under the "before" key.
func OnGuildUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildUpdatePayload discord.GuildUpdate

	err := unmarshalPayload(msg, &guildUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if !guildUpdatePayload.ID.IsNil() {
		ctx = WithGuildID(ctx, guildUpdatePayload.ID)
	}

	beforeGuild, ok := shard.client.stateProvider.GetGuild(ctx, guildUpdatePayload.ID)
	if !ok {
		shard.Logger.Warn("Received "+discord.EventGuildUpdate+" event, but previous guild not present in state", "guild_id", guildUpdatePayload.ID)
	}

	guild := beforeGuild
	guild.ID = guildUpdatePayload.ID

	if guildUpdatePayload.Name != nil {
		guild.Name = *guildUpdatePayload.Name
	}

	if guildUpdatePayload.Icon != nil {
		guild.Icon = *guildUpdatePayload.Icon
	}

	if guildUpdatePayload.OwnerID != nil {
		guild.OwnerID = guildUpdatePayload.OwnerID
	}

	if guildUpdatePayload.Region != nil {
		guild.Region = *guildUpdatePayload.Region
	}

	if guildUpdatePayload.VerificationLevel != nil {
		guild.VerificationLevel = *guildUpdatePayload.VerificationLevel
	}

	if guildUpdatePayload.DefaultMessageNotifications != nil {
		guild.DefaultMessageNotifications = *guildUpdatePayload.DefaultMessageNotifications
	}

	if guildUpdatePayload.Description != nil {
		guild.Description = *guildUpdatePayload.Description
	}

	if guildUpdatePayload.Banner != nil {
		guild.Banner = *guildUpdatePayload.Banner
	}

	if guildUpdatePayload.Roles != nil {
		guild.Roles = guildUpdatePayload.Roles
	}

	shard.client.stateProvider.SetGuild(ctx, guild.ID, guild)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeGuild),
	}, true, nil
}

// OnGuildDelete removes the guild from state, unless the delete only
// flags an outage, in which case the cached guild survives so state is
// intact when the guild comes back.
func OnGuildDelete(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildDeletePayload discord.GuildDelete

	err := unmarshalPayload(msg, &guildDeletePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if !guildDeletePayload.ID.IsNil() {
		ctx = WithGuildID(ctx, guildDeletePayload.ID)
	}

	beforeGuild, _ := shard.client.stateProvider.GetGuild(ctx, guildDeletePayload.ID)

	if guildDeletePayload.Unavailable {
		shard.UnavailableGuilds.Store(guildDeletePayload.ID, true)
	} else {
		members, _ := shard.client.stateProvider.GetGuildMembers(ctx, guildDeletePayload.ID)
		for _, member := range members {
			if member.User != nil {
				shard.client.stateProvider.RemoveUserMutualGuild(ctx, member.User.ID, guildDeletePayload.ID)
			}
		}

		shard.client.stateProvider.RemoveGuild(ctx, guildDeletePayload.ID)
		shard.Guilds.Delete(guildDeletePayload.ID)
		shard.UnavailableGuilds.Delete(guildDeletePayload.ID)
	}

	UpdateUnavailableGuilds(float64(shard.UnavailableGuilds.Count()))

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeGuild),
	}, true, nil
}

func OnGuildRoleCreate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildRoleCreatePayload discord.GuildRoleCreate

	err := unmarshalPayload(msg, &guildRoleCreatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	ctx = WithGuildID(ctx, guildRoleCreatePayload.GuildID)

	shard.client.stateProvider.SetGuildRole(ctx, guildRoleCreatePayload.GuildID, guildRoleCreatePayload.Role)

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnGuildRoleUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildRoleUpdatePayload discord.GuildRoleUpdate

	err := unmarshalPayload(msg, &guildRoleUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	ctx = WithGuildID(ctx, guildRoleUpdatePayload.GuildID)

	beforeRole, ok := shard.client.stateProvider.GetGuildRole(ctx, guildRoleUpdatePayload.GuildID, guildRoleUpdatePayload.Role.ID)
	if !ok {
		shard.Logger.Warn("Received "+discord.EventGuildRoleUpdate+" event, but previous role not present in state", "guild_id", guildRoleUpdatePayload.GuildID, "role_id", guildRoleUpdatePayload.Role.ID)
	}

	shard.client.stateProvider.SetGuildRole(ctx, guildRoleUpdatePayload.GuildID, guildRoleUpdatePayload.Role)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeRole),
	}, true, nil
}

func OnGuildRoleDelete(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildRoleDeletePayload discord.GuildRoleDelete

	err := unmarshalPayload(msg, &guildRoleDeletePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	ctx = WithGuildID(ctx, guildRoleDeletePayload.GuildID)

	beforeRole, _ := shard.client.stateProvider.GetGuildRole(ctx, guildRoleDeletePayload.GuildID, guildRoleDeletePayload.RoleID)

	shard.client.stateProvider.RemoveGuildRole(ctx, guildRoleDeletePayload.GuildID, guildRoleDeletePayload.RoleID)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeRole),
	}, true, nil
}

func OnChannelCreate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var channelCreatePayload discord.ChannelCreate

	err := unmarshalPayload(msg, &channelCreatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if channelCreatePayload.GuildID != nil {
		ctx = WithGuildID(ctx, *channelCreatePayload.GuildID)

		shard.client.stateProvider.SetGuildChannel(ctx, *channelCreatePayload.GuildID, discord.Channel(channelCreatePayload))
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnChannelUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var channelUpdatePayload discord.ChannelUpdate

	err := unmarshalPayload(msg, &channelUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if channelUpdatePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	ctx = WithGuildID(ctx, *channelUpdatePayload.GuildID)

	beforeChannel, ok := shard.client.stateProvider.GetGuildChannel(ctx, *channelUpdatePayload.GuildID, channelUpdatePayload.ID)
	if !ok {
		shard.Logger.Warn("Received "+discord.EventChannelUpdate+" event, but previous channel not present in state", "guild_id", *channelUpdatePayload.GuildID, "channel_id", channelUpdatePayload.ID)
	}

	shard.client.stateProvider.SetGuildChannel(ctx, *channelUpdatePayload.GuildID, discord.Channel(channelUpdatePayload))

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeChannel),
	}, true, nil
}

func OnChannelDelete(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var channelDeletePayload discord.ChannelDelete

	err := unmarshalPayload(msg, &channelDeletePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if channelDeletePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	ctx = WithGuildID(ctx, *channelDeletePayload.GuildID)

	beforeChannel, _ := shard.client.stateProvider.GetGuildChannel(ctx, *channelDeletePayload.GuildID, channelDeletePayload.ID)

	shard.client.stateProvider.RemoveGuildChannel(ctx, *channelDeletePayload.GuildID, channelDeletePayload.ID)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeChannel),
	}, true, nil
}

func OnGuildMemberAdd(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildMemberAddPayload discord.GuildMemberAdd

	err := unmarshalPayload(msg, &guildMemberAddPayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if guildMemberAddPayload.GuildID != nil && guildMemberAddPayload.User != nil {
		ctx = WithGuildID(ctx, *guildMemberAddPayload.GuildID)

		shard.client.stateProvider.SetGuildMember(ctx, *guildMemberAddPayload.GuildID, discord.GuildMember(guildMemberAddPayload))
		shard.client.stateProvider.AddUserMutualGuild(ctx, guildMemberAddPayload.User.ID, *guildMemberAddPayload.GuildID)
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

// OnGuildMemberUpdate patches the cached member. Fields absent from the
// payload keep their cached value.
func OnGuildMemberUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildMemberUpdatePayload discord.GuildMemberUpdate

	err := unmarshalPayload(msg, &guildMemberUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if guildMemberUpdatePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	guildID := *guildMemberUpdatePayload.GuildID
	ctx = WithGuildID(ctx, guildID)

	beforeMember, ok := shard.client.stateProvider.GetGuildMember(ctx, guildID, guildMemberUpdatePayload.User.ID)
	if !ok {
		shard.Logger.Warn("Received "+discord.EventGuildMemberUpdate+" event, but previous member not present in state", "guild_id", guildID, "user_id", guildMemberUpdatePayload.User.ID)
	}

	member := beforeMember

	user := guildMemberUpdatePayload.User
	member.User = &user
	member.GuildID = &guildID

	if guildMemberUpdatePayload.Nick != nil {
		member.Nick = *guildMemberUpdatePayload.Nick
	}

	if guildMemberUpdatePayload.Roles != nil {
		member.Roles = guildMemberUpdatePayload.Roles
	}

	if guildMemberUpdatePayload.Pending != nil {
		member.Pending = *guildMemberUpdatePayload.Pending
	}

	shard.client.stateProvider.SetGuildMember(ctx, guildID, member)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeMember),
	}, true, nil
}

func OnGuildMemberRemove(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var guildMemberRemovePayload discord.GuildMemberRemove

	err := unmarshalPayload(msg, &guildMemberRemovePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if guildMemberRemovePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	guildID := *guildMemberRemovePayload.GuildID
	ctx = WithGuildID(ctx, guildID)

	beforeMember, _ := shard.client.stateProvider.GetGuildMember(ctx, guildID, guildMemberRemovePayload.User.ID)

	shard.client.stateProvider.RemoveGuildMember(ctx, guildID, guildMemberRemovePayload.User.ID)
	shard.client.stateProvider.RemoveUserMutualGuild(ctx, guildMemberRemovePayload.User.ID, guildID)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeMember),
	}, true, nil
}

func OnGuildMembersChunk(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	var guildMembersChunkPayload discord.GuildMembersChunk

	err := unmarshalPayload(msg, &guildMembersChunkPayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	ctx = WithGuildID(ctx, guildMembersChunkPayload.GuildID)

	for _, member := range guildMembersChunkPayload.Members {
		shard.client.stateProvider.SetGuildMember(ctx, guildMembersChunkPayload.GuildID, member)
	}

	shard.Logger.Debug("Chunked guild members",
		"member_count", len(guildMembersChunkPayload.Members),
		"chunk_index", guildMembersChunkPayload.ChunkIndex,
		"chunk_count", guildMembersChunkPayload.ChunkCount,
		"guild_id", guildMembersChunkPayload.GuildID)

	guildChunk, exists := shard.client.guildChunks.Load(guildMembersChunkPayload.GuildID)

	if !exists {
		return DispatchResult{nil, nil}, false, nil
	}

	if guildChunk.complete.Load() {
		shard.Logger.Warn("Received guild member chunk, but it is already complete", "guild_id", guildMembersChunkPayload.GuildID)
	}

	select {
	case guildChunk.chunkingChannel <- GuildChunkPartial{
		chunkIndex: guildMembersChunkPayload.ChunkIndex,
		chunkCount: guildMembersChunkPayload.ChunkCount,
		nonce:      guildMembersChunkPayload.Nonce,
	}:
	default:
	}

	return DispatchResult{nil, nil}, false, nil
}

// OnMessageCreate records the message in the ring. Replayed duplicates
// after a resume overwrite in place, so the ring never holds two entries
// for one id.
func OnMessageCreate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var messageCreatePayload discord.MessageCreate

	err := unmarshalPayload(msg, &messageCreatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if messageCreatePayload.GuildID != nil {
		ctx = WithGuildID(ctx, *messageCreatePayload.GuildID)
	}

	shard.client.stateProvider.SetMessage(ctx, discord.Message(messageCreatePayload))

	if messageCreatePayload.Author != nil {
		shard.client.stateProvider.SetUser(ctx, messageCreatePayload.Author.ID, *messageCreatePayload.Author)
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnMessageUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var messageUpdatePayload discord.MessageUpdate

	err := unmarshalPayload(msg, &messageUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if messageUpdatePayload.GuildID != nil {
		ctx = WithGuildID(ctx, *messageUpdatePayload.GuildID)
	}

	beforeMessage, ok := shard.client.stateProvider.GetMessage(ctx, messageUpdatePayload.ID)
	if !ok {
		// Not cached, nothing to patch. The raw payload still flows.
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	message := beforeMessage
	message.ApplyUpdate(messageUpdatePayload)

	shard.client.stateProvider.SetMessage(ctx, message)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeMessage),
	}, true, nil
}

func OnMessageDelete(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var messageDeletePayload discord.MessageDelete

	err := unmarshalPayload(msg, &messageDeletePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if messageDeletePayload.GuildID != nil {
		ctx = WithGuildID(ctx, *messageDeletePayload.GuildID)
	}

	beforeMessage, ok := shard.client.stateProvider.RemoveMessage(ctx, messageDeletePayload.ID)

	var extra *Extra
	if ok {
		extra = NewExtra().Set("before", beforeMessage)
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: extra,
	}, true, nil
}

func OnMessageDeleteBulk(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var messageDeleteBulkPayload discord.MessageDeleteBulk

	err := unmarshalPayload(msg, &messageDeleteBulkPayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if messageDeleteBulkPayload.GuildID != nil {
		ctx = WithGuildID(ctx, *messageDeleteBulkPayload.GuildID)
	}

	beforeMessages := make([]discord.Message, 0, len(messageDeleteBulkPayload.IDs))

	for _, messageID := range messageDeleteBulkPayload.IDs {
		if beforeMessage, ok := shard.client.stateProvider.RemoveMessage(ctx, messageID); ok {
			beforeMessages = append(beforeMessages, beforeMessage)
		}
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeMessages),
	}, true, nil
}

// OnPresenceUpdate mirrors the latest presence onto the cached member.
func OnPresenceUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var presenceUpdatePayload discord.PresenceUpdate

	err := unmarshalPayload(msg, &presenceUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if presenceUpdatePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	guildID := *presenceUpdatePayload.GuildID
	ctx = WithGuildID(ctx, guildID)

	member, ok := shard.client.stateProvider.GetGuildMember(ctx, guildID, presenceUpdatePayload.User.ID)
	if ok {
		member.Status = presenceUpdatePayload.Status

		shard.client.stateProvider.SetGuildMember(ctx, guildID, member)
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

// OnVoiceStateUpdate replaces the member's voice state. A nil channel id
// means the member disconnected and the state is dropped.
func OnVoiceStateUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var voiceStateUpdatePayload discord.VoiceStateUpdate

	err := unmarshalPayload(msg, &voiceStateUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	if voiceStateUpdatePayload.GuildID == nil {
		return DispatchResult{Data: msg.Data, Extra: nil}, true, nil
	}

	guildID := *voiceStateUpdatePayload.GuildID
	ctx = WithGuildID(ctx, guildID)

	beforeVoiceState, _ := shard.client.stateProvider.GetVoiceState(ctx, guildID, voiceStateUpdatePayload.UserID)

	if voiceStateUpdatePayload.ChannelID.IsNil() {
		shard.client.stateProvider.RemoveVoiceState(ctx, guildID, voiceStateUpdatePayload.UserID)
	} else {
		shard.client.stateProvider.SetVoiceState(ctx, guildID, discord.VoiceState(voiceStateUpdatePayload))
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeVoiceState),
	}, true, nil
}

func OnTypingStart(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnUserUpdate(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	var userUpdatePayload discord.UserUpdate

	err := unmarshalPayload(msg, &userUpdatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	defer onDispatchEvent(shard, msg.Type)

	beforeUser, _ := shard.client.stateProvider.GetUser(ctx, userUpdatePayload.ID)

	user := discord.User(userUpdatePayload)

	shard.client.stateProvider.SetUser(ctx, user.ID, user)
	shard.client.SetUser(&user)

	return DispatchResult{
		Data:  msg.Data,
		Extra: NewExtra().Set("before", beforeUser),
	}, true, nil
}

func OnInviteCreate(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	var inviteCreatePayload discord.InviteCreate

	err := unmarshalPayload(msg, &inviteCreatePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func OnInviteDelete(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (DispatchResult, bool, error) {
	onDispatchEvent(shard, msg.Type)

	var inviteDeletePayload discord.InviteDelete

	err := unmarshalPayload(msg, &inviteDeletePayload)
	if err != nil {
		return DispatchResult{nil, nil}, false, err
	}

	return DispatchResult{
		Data:  msg.Data,
		Extra: nil,
	}, true, nil
}

func init() {
	registerDispatchHandler(discord.EventReady, OnReady)
	registerDispatchHandler(discord.EventResumed, OnResumed)
	registerDispatchHandler(discord.EventGuildCreate, OnGuildCreate)
	registerDispatchHandler(discord.EventGuildUpdate, OnGuildUpdate)
	registerDispatchHandler(discord.EventGuildDelete, OnGuildDelete)
	registerDispatchHandler(discord.EventGuildRoleCreate, OnGuildRoleCreate)
	registerDispatchHandler(discord.EventGuildRoleUpdate, OnGuildRoleUpdate)
	registerDispatchHandler(discord.EventGuildRoleDelete, OnGuildRoleDelete)
	registerDispatchHandler(discord.EventChannelCreate, OnChannelCreate)
	registerDispatchHandler(discord.EventChannelUpdate, OnChannelUpdate)
	registerDispatchHandler(discord.EventChannelDelete, OnChannelDelete)
	registerDispatchHandler(discord.EventGuildMemberAdd, OnGuildMemberAdd)
	registerDispatchHandler(discord.EventGuildMemberUpdate, OnGuildMemberUpdate)
	registerDispatchHandler(discord.EventGuildMemberRemove, OnGuildMemberRemove)
	registerDispatchHandler(discord.EventGuildMembersChunk, OnGuildMembersChunk)
	registerDispatchHandler(discord.EventMessageCreate, OnMessageCreate)
	registerDispatchHandler(discord.EventMessageUpdate, OnMessageUpdate)
	registerDispatchHandler(discord.EventMessageDelete, OnMessageDelete)
	registerDispatchHandler(discord.EventMessageDeleteBulk, OnMessageDeleteBulk)
	registerDispatchHandler(discord.EventPresenceUpdate, OnPresenceUpdate)
	registerDispatchHandler(discord.EventVoiceStateUpdate, OnVoiceStateUpdate)
	registerDispatchHandler(discord.EventTypingStart, OnTypingStart)
	registerDispatchHandler(discord.EventUserUpdate, OnUserUpdate)
	registerDispatchHandler(discord.EventInviteCreate, OnInviteCreate)
	registerDispatchHandler(discord.EventInviteDelete, OnInviteDelete)
}
