package discord

// guild.go contains the structures to represent a guild.

// MessageNotificationLevel represents a guild's message notification level.
type MessageNotificationLevel int32

const (
	MessageNotificationsAllMessages MessageNotificationLevel = iota
	MessageNotificationsOnlyMentions
)

// VerificationLevel represents a guild's verification level.
type VerificationLevel uint8

const (
	VerificationLevelNone VerificationLevel = iota
	VerificationLevelLow
	VerificationLevelMedium
	VerificationLevelHigh
	VerificationLevelVeryHigh
)

// Guild represents a guild. Channels and members are owned by the guild
// within one cache instance; users are shared and referenced by id.
type Guild struct {
	ID   Snowflake `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon"`

	OwnerID *Snowflake `json:"owner_id,omitempty"`
	Region  string     `json:"region,omitempty"`

	AFKChannelID *Snowflake `json:"afk_channel_id,omitempty"`
	AFKTimeout   int32      `json:"afk_timeout,omitempty"`

	VerificationLevel           VerificationLevel        `json:"verification_level"`
	DefaultMessageNotifications MessageNotificationLevel `json:"default_message_notifications"`

	Roles    []Role   `json:"roles,omitempty"`
	Features []string `json:"features,omitempty"`

	JoinedAt    Timestamp `json:"joined_at,omitempty"`
	Large       bool      `json:"large,omitempty"`
	Unavailable bool      `json:"unavailable,omitempty"`
	MemberCount int32     `json:"member_count,omitempty"`

	VoiceStates []VoiceState  `json:"voice_states,omitempty"`
	Members     []GuildMember `json:"members,omitempty"`
	Channels    []Channel     `json:"channels,omitempty"`
	Presences   []Presence    `json:"presences,omitempty"`

	Description string `json:"description,omitempty"`
	Banner      string `json:"banner,omitempty"`
}

// UnavailableGuild represents a guild reference in the ready payload or
// an outage-flagged guild delete.
type UnavailableGuild struct {
	ID          Snowflake `json:"id"`
	Unavailable bool      `json:"unavailable"`
}

// Role represents a role in a guild.
type Role struct {
	ID          Snowflake   `json:"id"`
	Name        string      `json:"name"`
	Color       int32       `json:"color,omitempty"`
	Hoist       bool        `json:"hoist,omitempty"`
	Position    int32       `json:"position,omitempty"`
	Permissions Permissions `json:"permissions"`
	Managed     bool        `json:"managed,omitempty"`
	Mentionable bool        `json:"mentionable,omitempty"`
}

// GuildMember represents a user within a guild. The user record is
// shared, not owned; the guild id is a weak back-reference.
type GuildMember struct {
	User     *User       `json:"user,omitempty"`
	GuildID  *Snowflake  `json:"guild_id,omitempty"`
	Nick     string      `json:"nick,omitempty"`
	Roles    []Snowflake `json:"roles"`
	JoinedAt Timestamp   `json:"joined_at"`
	Deaf     bool        `json:"deaf"`
	Mute     bool        `json:"mute"`
	Pending  bool        `json:"pending,omitempty"`

	// Status mirrors the most recent presence update for the member.
	Status string `json:"status,omitempty"`
}

// HasRole returns true when the member holds the given role.
func (gm *GuildMember) HasRole(roleID Snowflake) bool {
	for _, id := range gm.Roles {
		if id == roleID {
			return true
		}
	}

	return false
}

// VoiceState represents a member's voice connection state.
type VoiceState struct {
	UserID    Snowflake  `json:"user_id"`
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`
	SessionID string     `json:"session_id"`
	Deaf      bool       `json:"deaf"`
	Mute      bool       `json:"mute"`
	SelfDeaf  bool       `json:"self_deaf"`
	SelfMute  bool       `json:"self_mute"`
	Suppress  bool       `json:"suppress"`
}
