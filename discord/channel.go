package discord

import (
	"bytes"
	"fmt"
	"strconv"

	gotils_strconv "github.com/savsgio/gotils/strconv"
)

// channel.go contains the information relating to channels.

// ChannelType represents a channel's type.
type ChannelType uint8

const (
	ChannelTypeGuildText ChannelType = iota
	ChannelTypeDM
	ChannelTypeGuildVoice
	ChannelTypeGroupDM
	ChannelTypeGuildCategory
	ChannelTypeGuildNews
)

// IsGuild returns true for channel types that live inside a guild.
func (t ChannelType) IsGuild() bool {
	switch t {
	case ChannelTypeGuildText, ChannelTypeGuildVoice, ChannelTypeGuildCategory, ChannelTypeGuildNews:
		return true
	case ChannelTypeDM, ChannelTypeGroupDM:
		return false
	}

	return false
}

// IsText returns true for channel types that carry messages.
func (t ChannelType) IsText() bool {
	switch t {
	case ChannelTypeGuildText, ChannelTypeDM, ChannelTypeGroupDM, ChannelTypeGuildNews:
		return true
	case ChannelTypeGuildVoice, ChannelTypeGuildCategory:
		return false
	}

	return false
}

// Channel represents a channel. GuildID is a weak back-reference for
// guild channels and absent for private channels.
type Channel struct {
	ID                   Snowflake          `json:"id"`
	GuildID              *Snowflake         `json:"guild_id,omitempty"`
	Type                 ChannelType        `json:"type"`
	Position             int32              `json:"position,omitempty"`
	PermissionOverwrites []ChannelOverwrite `json:"permission_overwrites,omitempty"`
	Name                 string             `json:"name,omitempty"`
	Topic                string             `json:"topic,omitempty"`
	NSFW                 bool               `json:"nsfw,omitempty"`
	LastMessageID        Snowflake          `json:"last_message_id,omitempty"`
	Bitrate              int32              `json:"bitrate,omitempty"`
	UserLimit            int32              `json:"user_limit,omitempty"`
	RateLimitPerUser     int32              `json:"rate_limit_per_user,omitempty"`
	Recipients           []User             `json:"recipients,omitempty"`
	Icon                 string             `json:"icon,omitempty"`
	OwnerID              *Snowflake         `json:"owner_id,omitempty"`
	ParentID             *Snowflake         `json:"parent_id,omitempty"`
	LastPinTimestamp     Timestamp          `json:"last_pin_timestamp,omitempty"`
}

// ChannelOverwrite represents a permission overwrite for a channel.
type ChannelOverwrite struct {
	ID    Snowflake           `json:"id"`
	Type  ChannelOverrideType `json:"type"`
	Allow Permissions         `json:"allow"`
	Deny  Permissions         `json:"deny"`
}

// ChannelOverrideType represents the target of a channel overwrite.
type ChannelOverrideType uint8

const (
	ChannelOverrideTypeRole ChannelOverrideType = iota
	ChannelOverrideTypeMember
)

// The wire format historically carried the overwrite type as the strings
// "role" and "member" before switching to integers. Both are accepted.
func (in *ChannelOverrideType) UnmarshalJSON(b []byte) error {
	switch {
	case bytes.Equal(b, []byte(`"role"`)):
		*in = ChannelOverrideTypeRole
	case bytes.Equal(b, []byte(`"member"`)):
		*in = ChannelOverrideTypeMember
	default:
		i, err := strconv.ParseUint(gotils_strconv.B2S(b), decimalBase, 8)
		if err != nil {
			return fmt.Errorf("failed to unmarshal overwrite type: %w", err)
		}

		*in = ChannelOverrideType(i)
	}

	return nil
}

func (in ChannelOverrideType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(in), decimalBase)), nil
}

func (in ChannelOverrideType) String() string {
	if in == ChannelOverrideTypeRole {
		return "role"
	}

	return "member"
}

// ChannelPosition is a single entry in a channel reorder request.
type ChannelPosition struct {
	ID       Snowflake `json:"id"`
	Position int32     `json:"position"`
}
