package drift

import (
	"github.com/driftchat/drift/discord"
)

// permissions.go resolves effective permissions for a member in a
// channel. Resolution is pure: it reads only the guild, channel and
// member records handed to it.

// BasePermissions computes guild-level permissions for a member before
// channel overwrites: the everyone role, ORed with each of the member's
// roles. The guild owner and administrators hold every permission.
func BasePermissions(guild *discord.Guild, member *discord.GuildMember) discord.Permissions {
	if member.User != nil && guild.OwnerID != nil && *guild.OwnerID == member.User.ID {
		return discord.PermissionAll
	}

	var base discord.Permissions

	// The everyone role shares its id with the guild.
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			base = role.Permissions

			break
		}
	}

	for _, role := range guild.Roles {
		if member.HasRole(role.ID) {
			base |= role.Permissions
		}
	}

	if base.Has(discord.PermissionAdministrator) {
		return discord.PermissionAll
	}

	return base
}

// PermissionsFor resolves the member's effective permissions in a
// channel. Overwrites apply everyone first, then the member's roles
// accumulated together, then the member-specific overwrite. Lacking
// view access clears every channel-scoped permission; lacking send
// access clears the permissions that require sending.
func PermissionsFor(guild *discord.Guild, channel *discord.Channel, member *discord.GuildMember) discord.Permissions {
	base := BasePermissions(guild, member)

	// Owners and administrators bypass overwrites entirely.
	if base == discord.PermissionAll {
		return base
	}

	// The everyone overwrite shares its id with the guild.
	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.Type == discord.ChannelOverrideTypeRole && overwrite.ID == guild.ID {
			base &^= overwrite.Deny
			base |= overwrite.Allow

			break
		}
	}

	var allows, denies discord.Permissions

	for _, overwrite := range channel.PermissionOverwrites {
		if overwrite.Type == discord.ChannelOverrideTypeRole && overwrite.ID != guild.ID && member.HasRole(overwrite.ID) {
			allows |= overwrite.Allow
			denies |= overwrite.Deny
		}
	}

	base &^= denies
	base |= allows

	if member.User != nil {
		for _, overwrite := range channel.PermissionOverwrites {
			if overwrite.Type == discord.ChannelOverrideTypeMember && overwrite.ID == member.User.ID {
				base &^= overwrite.Deny
				base |= overwrite.Allow

				break
			}
		}
	}

	// The default channel is always visible. It shares its id with the
	// guild.
	if channel.ID == guild.ID {
		base |= discord.PermissionViewChannel
	}

	if !base.Has(discord.PermissionViewChannel) {
		base &^= discord.PermissionAllChannel
	}

	if !base.Has(discord.PermissionSendMessages) {
		base &^= discord.PermissionSendDependent
	}

	if channel.Type.IsText() {
		base &^= discord.PermissionAllVoice &^ discord.PermissionViewChannel
	}

	return base
}
