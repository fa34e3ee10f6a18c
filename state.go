package drift

import (
	"context"

	"github.com/driftchat/drift/discord"
)

// StateProvider is the session state cache. Implementations must be safe
// for concurrent use; getters return copies, not shared references.
type StateProvider interface {
	// Guilds
	GetGuild(ctx context.Context, guildID discord.Snowflake) (discord.Guild, bool)
	SetGuild(ctx context.Context, guildID discord.Snowflake, guild discord.Guild)
	RemoveGuild(ctx context.Context, guildID discord.Snowflake)

	// Guild Members
	GetGuildMembers(ctx context.Context, guildID discord.Snowflake) ([]discord.GuildMember, bool)

	GetGuildMember(ctx context.Context, guildID, userID discord.Snowflake) (discord.GuildMember, bool)
	SetGuildMember(ctx context.Context, guildID discord.Snowflake, member discord.GuildMember)
	RemoveGuildMember(ctx context.Context, guildID, userID discord.Snowflake)

	// Channels
	GetGuildChannels(ctx context.Context, guildID discord.Snowflake) ([]discord.Channel, bool)
	SetGuildChannels(ctx context.Context, guildID discord.Snowflake, channels []discord.Channel)

	GetGuildChannel(ctx context.Context, guildID, channelID discord.Snowflake) (discord.Channel, bool)
	SetGuildChannel(ctx context.Context, guildID discord.Snowflake, channel discord.Channel)
	RemoveGuildChannel(ctx context.Context, guildID, channelID discord.Snowflake)

	// Roles
	GetGuildRoles(ctx context.Context, guildID discord.Snowflake) ([]discord.Role, bool)
	SetGuildRoles(ctx context.Context, guildID discord.Snowflake, roles []discord.Role)

	GetGuildRole(ctx context.Context, guildID, roleID discord.Snowflake) (discord.Role, bool)
	SetGuildRole(ctx context.Context, guildID discord.Snowflake, role discord.Role)
	RemoveGuildRole(ctx context.Context, guildID, roleID discord.Snowflake)

	// Voice States
	GetVoiceStates(ctx context.Context, guildID discord.Snowflake) ([]discord.VoiceState, bool)

	GetVoiceState(ctx context.Context, guildID, userID discord.Snowflake) (discord.VoiceState, bool)
	SetVoiceState(ctx context.Context, guildID discord.Snowflake, voiceState discord.VoiceState)
	RemoveVoiceState(ctx context.Context, guildID, userID discord.Snowflake)

	// Users
	GetUser(ctx context.Context, userID discord.Snowflake) (discord.User, bool)
	SetUser(ctx context.Context, userID discord.Snowflake, user discord.User)

	// Messages. The message cache is a bounded ring: the oldest message
	// is evicted when full.
	GetMessage(ctx context.Context, messageID discord.Snowflake) (discord.Message, bool)
	SetMessage(ctx context.Context, message discord.Message)
	RemoveMessage(ctx context.Context, messageID discord.Snowflake) (discord.Message, bool)

	// User Mutuals
	GetUserMutualGuilds(ctx context.Context, userID discord.Snowflake) ([]discord.Snowflake, bool)
	AddUserMutualGuild(ctx context.Context, userID, guildID discord.Snowflake)
	RemoveUserMutualGuild(ctx context.Context, userID, guildID discord.Snowflake)
}
