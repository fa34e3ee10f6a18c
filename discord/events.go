package discord

// events.go contains the structures of all received dispatch events.

// Dispatch event names.
const (
	EventReady                 = "READY"
	EventResumed               = "RESUMED"
	EventGuildCreate           = "GUILD_CREATE"
	EventGuildUpdate           = "GUILD_UPDATE"
	EventGuildDelete           = "GUILD_DELETE"
	EventGuildRoleCreate       = "GUILD_ROLE_CREATE"
	EventGuildRoleUpdate       = "GUILD_ROLE_UPDATE"
	EventGuildRoleDelete       = "GUILD_ROLE_DELETE"
	EventChannelCreate         = "CHANNEL_CREATE"
	EventChannelUpdate         = "CHANNEL_UPDATE"
	EventChannelDelete         = "CHANNEL_DELETE"
	EventGuildMemberAdd        = "GUILD_MEMBER_ADD"
	EventGuildMemberUpdate     = "GUILD_MEMBER_UPDATE"
	EventGuildMemberRemove     = "GUILD_MEMBER_REMOVE"
	EventGuildMembersChunk     = "GUILD_MEMBERS_CHUNK"
	EventMessageCreate         = "MESSAGE_CREATE"
	EventMessageUpdate         = "MESSAGE_UPDATE"
	EventMessageDelete         = "MESSAGE_DELETE"
	EventMessageDeleteBulk     = "MESSAGE_DELETE_BULK"
	EventPresenceUpdate        = "PRESENCE_UPDATE"
	EventVoiceStateUpdate      = "VOICE_STATE_UPDATE"
	EventTypingStart           = "TYPING_START"
	EventUserUpdate            = "USER_UPDATE"
	EventInviteCreate          = "INVITE_CREATE"
	EventInviteDelete          = "INVITE_DELETE"
	EventMessageReactionAdd    = "MESSAGE_REACTION_ADD"
	EventMessageReactionRemove = "MESSAGE_REACTION_REMOVE"
)

// Empty structure.
type void struct{}

// Hello is received when connecting and carries the heartbeat interval.
type Hello struct {
	HeartbeatInterval int32 `json:"heartbeat_interval"`
}

// Ready is received when the client has completed the initial handshake.
type Ready struct {
	SessionID        string             `json:"session_id"`
	ResumeGatewayURL string             `json:"resume_gateway_url"`
	Guilds           []UnavailableGuild `json:"guilds"`
	Shard            []int32            `json:"shard,omitempty"`
	User             User               `json:"user"`
	Version          int32              `json:"v"`
}

// Resumed is received after a successful resume.
type Resumed void

// InvalidSession indicates the session can no longer be used. When
// Resumable is false a full identify is required.
type InvalidSession bool

// GuildCreate represents a guild create event.
type GuildCreate Guild

// GuildUpdate is a partial guild patch. Absent fields keep their cached
// value.
type GuildUpdate struct {
	ID   Snowflake `json:"id"`
	Name *string   `json:"name,omitempty"`
	Icon *string   `json:"icon,omitempty"`

	OwnerID *Snowflake `json:"owner_id,omitempty"`
	Region  *string    `json:"region,omitempty"`

	VerificationLevel           *VerificationLevel        `json:"verification_level,omitempty"`
	DefaultMessageNotifications *MessageNotificationLevel `json:"default_message_notifications,omitempty"`

	Roles []Role `json:"roles,omitempty"`

	Description *string `json:"description,omitempty"`
	Banner      *string `json:"banner,omitempty"`
}

// GuildDelete represents a guild delete event. When Unavailable is true
// the guild still exists but is in an outage.
type GuildDelete UnavailableGuild

// GuildRoleCreate represents a guild role create event.
type GuildRoleCreate struct {
	GuildID Snowflake `json:"guild_id"`
	Role    Role      `json:"role"`
}

// GuildRoleUpdate represents a guild role update event.
type GuildRoleUpdate GuildRoleCreate

// GuildRoleDelete represents a guild role delete event.
type GuildRoleDelete struct {
	GuildID Snowflake `json:"guild_id"`
	RoleID  Snowflake `json:"role_id"`
}

// ChannelCreate represents a channel create event.
type ChannelCreate Channel

// ChannelUpdate represents a channel update event.
type ChannelUpdate Channel

// ChannelDelete represents a channel delete event.
type ChannelDelete Channel

// GuildMemberAdd represents a guild member add event.
type GuildMemberAdd GuildMember

// GuildMemberUpdate is a partial member patch.
type GuildMemberUpdate struct {
	User    User        `json:"user"`
	GuildID *Snowflake  `json:"guild_id,omitempty"`
	Nick    *string     `json:"nick,omitempty"`
	Roles   []Snowflake `json:"roles,omitempty"`
	Pending *bool       `json:"pending,omitempty"`
}

// GuildMemberRemove represents a guild member remove event.
type GuildMemberRemove struct {
	User    User       `json:"user"`
	GuildID *Snowflake `json:"guild_id,omitempty"`
}

// GuildMembersChunk is one page of an offline-member request response.
type GuildMembersChunk struct {
	GuildID    Snowflake     `json:"guild_id"`
	Members    []GuildMember `json:"members"`
	ChunkIndex int32         `json:"chunk_index"`
	ChunkCount int32         `json:"chunk_count"`
	Nonce      string        `json:"nonce,omitempty"`
}

// MessageCreate represents a message create event.
type MessageCreate Message

// MessageUpdate is a partial message patch. Absent fields keep their
// cached value; see Message.ApplyUpdate.
type MessageUpdate struct {
	ID        Snowflake  `json:"id"`
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`

	Content         *string    `json:"content,omitempty"`
	EditedTimestamp *Timestamp `json:"edited_timestamp,omitempty"`
	Pinned          *bool      `json:"pinned,omitempty"`
	MentionEveryone *bool      `json:"mention_everyone,omitempty"`

	Mentions     []User      `json:"mentions,omitempty"`
	MentionRoles []Snowflake `json:"mention_roles,omitempty"`

	Embeds      []Embed             `json:"embeds,omitempty"`
	Attachments []MessageAttachment `json:"attachments,omitempty"`
}

// MessageDelete represents a message delete event.
type MessageDelete struct {
	ID        Snowflake  `json:"id"`
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
}

// MessageDeleteBulk represents a message bulk delete event.
type MessageDeleteBulk struct {
	IDs       []Snowflake `json:"ids"`
	ChannelID Snowflake   `json:"channel_id"`
	GuildID   *Snowflake  `json:"guild_id,omitempty"`
}

// MessageReactionAdd represents a reaction add event.
type MessageReactionAdd struct {
	UserID    Snowflake  `json:"user_id"`
	ChannelID Snowflake  `json:"channel_id"`
	MessageID Snowflake  `json:"message_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
	Emoji     struct {
		ID   *Snowflake `json:"id"`
		Name string     `json:"name"`
	} `json:"emoji"`
}

// MessageReactionRemove represents a reaction remove event.
type MessageReactionRemove MessageReactionAdd

// PresenceUpdate represents a presence update event.
type PresenceUpdate Presence

// VoiceStateUpdate represents a voice state update event.
type VoiceStateUpdate VoiceState

// TypingStart represents a typing start event.
type TypingStart struct {
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
	UserID    Snowflake  `json:"user_id"`
	Timestamp int64      `json:"timestamp"`
}

// UserUpdate represents a user update event for the current user.
type UserUpdate User

// InviteCreate represents an invite create event.
type InviteCreate struct {
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
	Code      string     `json:"code"`
	CreatedAt Timestamp  `json:"created_at"`
	Inviter   *User      `json:"inviter,omitempty"`
	MaxAge    int32      `json:"max_age"`
	MaxUses   int32      `json:"max_uses"`
	Temporary bool       `json:"temporary"`
	Uses      int32      `json:"uses"`
}

// InviteDelete represents an invite delete event.
type InviteDelete struct {
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
	Code      string     `json:"code"`
}
