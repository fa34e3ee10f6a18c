package discord

// user.go represents all structures for a user.

// UserFlags represents the flags on a user's account.
type UserFlags int32

// UserPremiumType represents the type of premium on a user's account.
type UserPremiumType int32

// User represents an account on the platform. Users are shared between
// guild members and direct-message participants; caches store exactly
// one record per identifier and everything else refers to it by id.
type User struct {
	ID            Snowflake       `json:"id"`
	Username      string          `json:"username"`
	Discriminator string          `json:"discriminator"`
	Avatar        string          `json:"avatar"`
	Bot           bool            `json:"bot,omitempty"`
	System        bool            `json:"system,omitempty"`
	Flags         UserFlags       `json:"flags,omitempty"`
	PremiumType   UserPremiumType `json:"premium_type,omitempty"`
	PublicFlags   UserFlags       `json:"public_flags,omitempty"`
}

// Activity represents an entry in a presence's activity list.
type Activity struct {
	Name string `json:"name"`
	Type int32  `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Presence represents a member's presence state.
type Presence struct {
	User       User        `json:"user"`
	GuildID    *Snowflake  `json:"guild_id,omitempty"`
	Status     string      `json:"status"`
	Activities []*Activity `json:"activities,omitempty"`
}
