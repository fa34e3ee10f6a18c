package discord

import "time"

// Snowflaked is implemented by every entity that carries a Snowflake
// identifier and therefore a creation time. It is the closed capability
// set used wherever entity-like values are interchangeable: guilds,
// channels, members, users, messages and the Object placeholder.
type Snowflaked interface {
	GetID() Snowflake
	CreatedAt() time.Time
}

// Object is a placeholder entity carrying only an identifier and,
// optionally, a name. It stands in for entities that are referenced but
// not cached, such as the guild attached to an invite.
type Object struct {
	ID   Snowflake `json:"id"`
	Name string    `json:"name,omitempty"`
}

func (o Object) GetID() Snowflake {
	return o.ID
}

func (o Object) CreatedAt() time.Time {
	return o.ID.Time()
}

func (u User) GetID() Snowflake {
	return u.ID
}

func (u User) CreatedAt() time.Time {
	return u.ID.Time()
}

// GetID returns the member's user identifier. Members share identity
// with their user.
func (gm GuildMember) GetID() Snowflake {
	if gm.User != nil {
		return gm.User.ID
	}

	return 0
}

func (gm GuildMember) CreatedAt() time.Time {
	return gm.GetID().Time()
}

func (c Channel) GetID() Snowflake {
	return c.ID
}

func (c Channel) CreatedAt() time.Time {
	return c.ID.Time()
}

func (g Guild) GetID() Snowflake {
	return g.ID
}

func (g Guild) CreatedAt() time.Time {
	return g.ID.Time()
}

func (m Message) GetID() Snowflake {
	return m.ID
}

func (m Message) CreatedAt() time.Time {
	return m.ID.Time()
}
