package drift_test

import (
	"testing"

	drift "github.com/driftchat/drift"
	"github.com/driftchat/drift/discord"
	"github.com/stretchr/testify/assert"
)

const (
	permGuildID  = discord.Snowflake(100)
	permOwnerID  = discord.Snowflake(1)
	permMemberID = discord.Snowflake(2)

	moderatorRoleID = discord.Snowflake(20)
	adminRoleID     = discord.Snowflake(30)
)

func permGuild() *discord.Guild {
	ownerID := permOwnerID

	return &discord.Guild{
		ID:      permGuildID,
		OwnerID: &ownerID,
		Roles: []discord.Role{
			// The everyone role shares the guild id.
			{ID: permGuildID, Permissions: discord.PermissionViewChannel | discord.PermissionSendMessages},
			{ID: moderatorRoleID, Permissions: discord.PermissionManageMessages | discord.PermissionKickMembers},
			{ID: adminRoleID, Permissions: discord.PermissionAdministrator},
		},
	}
}

func permMember(userID discord.Snowflake, roles ...discord.Snowflake) *discord.GuildMember {
	return &discord.GuildMember{
		User:  &discord.User{ID: userID},
		Roles: roles,
	}
}

func TestBasePermissionsOwner(t *testing.T) {
	t.Parallel()

	base := drift.BasePermissions(permGuild(), permMember(permOwnerID))
	assert.Equal(t, discord.PermissionAll, base)
}

func TestBasePermissionsAdministrator(t *testing.T) {
	t.Parallel()

	base := drift.BasePermissions(permGuild(), permMember(permMemberID, adminRoleID))
	assert.Equal(t, discord.PermissionAll, base)
}

func TestBasePermissionsEveryone(t *testing.T) {
	t.Parallel()

	base := drift.BasePermissions(permGuild(), permMember(permMemberID))
	assert.Equal(t, discord.PermissionViewChannel|discord.PermissionSendMessages, base)
}

func TestBasePermissionsRolesAccumulate(t *testing.T) {
	t.Parallel()

	base := drift.BasePermissions(permGuild(), permMember(permMemberID, moderatorRoleID))

	assert.True(t, base.Has(discord.PermissionViewChannel))
	assert.True(t, base.Has(discord.PermissionSendMessages))
	assert.True(t, base.Has(discord.PermissionManageMessages))
	assert.True(t, base.Has(discord.PermissionKickMembers))
	assert.False(t, base.Has(discord.PermissionBanMembers))
}

func TestPermissionsForAdministratorBypassesOverwrites(t *testing.T) {
	t.Parallel()

	channel := &discord.Channel{
		ID:   10,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: permGuildID, Type: discord.ChannelOverrideTypeRole, Deny: discord.PermissionViewChannel},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID, adminRoleID))
	assert.Equal(t, discord.PermissionAll, resolved)
}

func TestPermissionsForEveryoneOverwrite(t *testing.T) {
	t.Parallel()

	channel := &discord.Channel{
		ID:   10,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: permGuildID, Type: discord.ChannelOverrideTypeRole, Deny: discord.PermissionViewChannel},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID))

	// Without view access every channel permission is cleared.
	assert.False(t, resolved.Has(discord.PermissionViewChannel))
	assert.False(t, resolved.Has(discord.PermissionSendMessages))
}

func TestPermissionsForRoleOverwriteBeatsEveryone(t *testing.T) {
	t.Parallel()

	channel := &discord.Channel{
		ID:   10,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: permGuildID, Type: discord.ChannelOverrideTypeRole, Deny: discord.PermissionViewChannel},
			{ID: moderatorRoleID, Type: discord.ChannelOverrideTypeRole, Allow: discord.PermissionViewChannel},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID, moderatorRoleID))
	assert.True(t, resolved.Has(discord.PermissionViewChannel))
}

func TestPermissionsForMemberOverwriteBeatsRoles(t *testing.T) {
	t.Parallel()

	channel := &discord.Channel{
		ID:   10,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: moderatorRoleID, Type: discord.ChannelOverrideTypeRole, Allow: discord.PermissionManageMessages},
			{ID: permMemberID, Type: discord.ChannelOverrideTypeMember, Deny: discord.PermissionManageMessages},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID, moderatorRoleID))
	assert.False(t, resolved.Has(discord.PermissionManageMessages))
}

func TestPermissionsForDefaultChannelAlwaysVisible(t *testing.T) {
	t.Parallel()

	// The default channel shares its id with the guild.
	channel := &discord.Channel{
		ID:   permGuildID,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: permGuildID, Type: discord.ChannelOverrideTypeRole, Deny: discord.PermissionViewChannel},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID))
	assert.True(t, resolved.Has(discord.PermissionViewChannel))
}

func TestPermissionsForNoSendClearsDependents(t *testing.T) {
	t.Parallel()

	channel := &discord.Channel{
		ID:   10,
		Type: discord.ChannelTypeGuildText,
		PermissionOverwrites: []discord.ChannelOverwrite{
			{ID: permGuildID, Type: discord.ChannelOverrideTypeRole, Deny: discord.PermissionSendMessages, Allow: discord.PermissionEmbedLinks | discord.PermissionAttachFiles},
		},
	}

	resolved := drift.PermissionsFor(permGuild(), channel, permMember(permMemberID))

	assert.True(t, resolved.Has(discord.PermissionViewChannel))
	assert.False(t, resolved.Has(discord.PermissionSendMessages))
	assert.False(t, resolved.Has(discord.PermissionEmbedLinks))
	assert.False(t, resolved.Has(discord.PermissionAttachFiles))
}

func TestPermissionsForTextChannelClearsVoice(t *testing.T) {
	t.Parallel()

	guild := permGuild()
	guild.Roles[0].Permissions |= discord.PermissionVoiceConnect | discord.PermissionVoiceSpeak

	channel := &discord.Channel{ID: 10, Type: discord.ChannelTypeGuildText}

	resolved := drift.PermissionsFor(guild, channel, permMember(permMemberID))

	assert.True(t, resolved.Has(discord.PermissionViewChannel))
	assert.False(t, resolved.Has(discord.PermissionVoiceConnect))
	assert.False(t, resolved.Has(discord.PermissionVoiceSpeak))

	voice := &discord.Channel{ID: 11, Type: discord.ChannelTypeGuildVoice}

	resolved = drift.PermissionsFor(guild, voice, permMember(permMemberID))
	assert.True(t, resolved.Has(discord.PermissionVoiceConnect))
}
