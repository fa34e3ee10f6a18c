package discord

// invites.go contains all structures for invites.

// Invite represents an invite. The code is the identity key: two invites
// are the same invite when their codes match, regardless of any other
// field. Guild and Channel may be partial placeholder records carrying
// only an id and a name when the full entity is not cached.
type Invite struct {
	Code string `json:"code"`

	Guild   *Object    `json:"guild,omitempty"`
	GuildID *Snowflake `json:"guild_id,omitempty"`
	Channel *Object    `json:"channel,omitempty"`

	Inviter *User `json:"inviter,omitempty"`

	Uses      int32     `json:"uses,omitempty"`
	MaxUses   int32     `json:"max_uses,omitempty"`
	MaxAge    int32     `json:"max_age,omitempty"`
	Temporary bool      `json:"temporary,omitempty"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
	ExpiresAt Timestamp `json:"expires_at,omitempty"`
}

// InviteParams is the body of an invite create request.
type InviteParams struct {
	MaxAge    int32 `json:"max_age"`
	MaxUses   int32 `json:"max_uses"`
	Temporary bool  `json:"temporary"`
	Unique    bool  `json:"unique"`
}
