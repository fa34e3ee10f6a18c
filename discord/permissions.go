package discord

// Permissions is a permission bitmask. It is transported as a string
// encoded integer (see Int64).
type Permissions int64

const (
	PermissionCreateInstantInvite Permissions = 1 << iota // Allows creation of instant invites.
	PermissionKickMembers                                 // Allows kicking members.
	PermissionBanMembers                                  // Allows banning members.
	PermissionAdministrator                               // Allows all permissions and bypasses channel permission overwrites.
	PermissionManageChannels                              // Allows management and editing of channels.
	PermissionManageServer                                // Allows management and editing of the guild.
	PermissionAddReactions                                // Allows for the addition of reactions to messages.
	PermissionViewAuditLogs                               // Allows for viewing of audit logs.
	PermissionVoicePrioritySpeaker                        // Allows for using priority speaker in a voice channel.
	PermissionVoiceStreamVideo                            // Allows the user to go live.
	PermissionViewChannel                                 // Allows viewing a channel, including reading messages.
	PermissionSendMessages                                // Allows for sending messages in a channel.
	PermissionSendTTSMessages                             // Allows for sending of text-to-speech messages.
	PermissionManageMessages                              // Allows for deletion of other users messages.
	PermissionEmbedLinks                                  // Links sent by users with this permission will be auto-embedded.
	PermissionAttachFiles                                 // Allows for uploading images and files.
	PermissionReadMessageHistory                          // Allows for reading of message history.
	PermissionMentionEveryone                             // Allows for using the everyone and here tags.
	PermissionUseExternalEmojis                           // Allows the usage of custom emojis from other servers.
	PermissionViewGuildInsights                           // Allows for viewing guild insights.
	PermissionVoiceConnect                                // Allows for joining of a voice channel.
	PermissionVoiceSpeak                                  // Allows for speaking in a voice channel.
	PermissionVoiceMuteMembers                            // Allows for muting members in a voice channel.
	PermissionVoiceDeafenMembers                          // Allows for deafening of members in a voice channel.
	PermissionVoiceMoveMembers                            // Allows for moving of members between voice channels.
	PermissionVoiceUseVAD                                 // Allows for using voice-activity-detection in a voice channel.
	PermissionChangeNickname                              // Allows for modification of own nickname.
	PermissionManageNicknames                             // Allows for modification of other users nicknames.
	PermissionManageRoles                                 // Allows management and editing of roles.
	PermissionManageWebhooks                              // Allows management and editing of webhooks.
	PermissionManageEmojis                                // Allows management and editing of emojis.

	PermissionAllText = PermissionViewChannel |
		PermissionSendMessages |
		PermissionSendTTSMessages |
		PermissionManageMessages |
		PermissionEmbedLinks |
		PermissionAttachFiles |
		PermissionReadMessageHistory |
		PermissionMentionEveryone

	PermissionAllVoice = PermissionViewChannel |
		PermissionVoiceConnect |
		PermissionVoiceSpeak |
		PermissionVoiceMuteMembers |
		PermissionVoiceDeafenMembers |
		PermissionVoiceMoveMembers |
		PermissionVoiceUseVAD |
		PermissionVoicePrioritySpeaker

	PermissionAllChannel = PermissionAllText |
		PermissionAllVoice |
		PermissionCreateInstantInvite |
		PermissionManageRoles |
		PermissionManageChannels |
		PermissionAddReactions |
		PermissionViewAuditLogs

	PermissionAll = PermissionAllChannel |
		PermissionKickMembers |
		PermissionBanMembers |
		PermissionManageServer |
		PermissionAdministrator |
		PermissionManageWebhooks |
		PermissionManageEmojis

	// Permissions cleared alongside send-messages. Sending is a
	// prerequisite for each of these.
	PermissionSendDependent = PermissionSendTTSMessages |
		PermissionMentionEveryone |
		PermissionEmbedLinks |
		PermissionAttachFiles
)

// Has returns true when every bit of other is set.
func (p Permissions) Has(other Permissions) bool {
	return p&other == other
}

func (p *Permissions) UnmarshalJSON(b []byte) error {
	var in Int64

	err := in.UnmarshalJSON(b)
	if err != nil {
		return err
	}

	*p = Permissions(in)

	return nil
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return Int64(p).MarshalJSON()
}
