package discord

import (
	"regexp"
	"strconv"
)

// message.go contains the structure that represents a message.

// MessageType represents the type of message that has been sent.
type MessageType uint16

const (
	MessageTypeDefault MessageType = iota
	MessageTypeRecipientAdd
	MessageTypeRecipientRemove
	MessageTypeCall
	MessageTypeChannelNameChange
	MessageTypeChannelIconChange
	MessageTypeChannelPinnedMessage
	MessageTypeGuildMemberJoin
)

// Message represents a message. ChannelID and GuildID are weak
// references resolved against the owning cache.
type Message struct {
	ID        Snowflake  `json:"id"`
	ChannelID Snowflake  `json:"channel_id"`
	GuildID   *Snowflake `json:"guild_id,omitempty"`

	Author *User        `json:"author"`
	Member *GuildMember `json:"member,omitempty"`

	Content         string    `json:"content"`
	Timestamp       Timestamp `json:"timestamp"`
	EditedTimestamp Timestamp `json:"edited_timestamp,omitempty"`
	TTS             bool      `json:"tts,omitempty"`

	MentionEveryone bool        `json:"mention_everyone,omitempty"`
	Mentions        []User      `json:"mentions,omitempty"`
	MentionRoles    []Snowflake `json:"mention_roles,omitempty"`

	Attachments []MessageAttachment `json:"attachments,omitempty"`
	Embeds      []Embed             `json:"embeds,omitempty"`
	Nonce       *Snowflake          `json:"nonce,omitempty"`
	Pinned      bool                `json:"pinned,omitempty"`
	Type        MessageType         `json:"type"`

	// Derived mention id lists, computed from content on demand and
	// cleared whenever a patch touches content.
	rawMentions        []Snowflake
	rawChannelMentions []Snowflake
	rawRoleMentions    []Snowflake
	rawMentionsValid   bool
}

var (
	userMentionRegex    = regexp.MustCompile(`<@!?([0-9]+)>`)
	channelMentionRegex = regexp.MustCompile(`<#([0-9]+)>`)
	roleMentionRegex    = regexp.MustCompile(`<@&([0-9]+)>`)
)

func extractMentionIDs(re *regexp.Regexp, content string) []Snowflake {
	matches := re.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	ids := make([]Snowflake, 0, len(matches))

	for _, match := range matches {
		id, err := strconv.ParseInt(match[1], decimalBase, bitSize)
		if err != nil {
			continue
		}

		ids = append(ids, Snowflake(id))
	}

	return ids
}

func (m *Message) computeRawMentions() {
	m.rawMentions = extractMentionIDs(userMentionRegex, m.Content)
	m.rawChannelMentions = extractMentionIDs(channelMentionRegex, m.Content)
	m.rawRoleMentions = extractMentionIDs(roleMentionRegex, m.Content)
	m.rawMentionsValid = true
}

// RawMentions returns the user ids mentioned with <@id> or <@!id> syntax
// in the message content.
func (m *Message) RawMentions() []Snowflake {
	if !m.rawMentionsValid {
		m.computeRawMentions()
	}

	return m.rawMentions
}

// RawChannelMentions returns the channel ids mentioned with <#id> syntax.
func (m *Message) RawChannelMentions() []Snowflake {
	if !m.rawMentionsValid {
		m.computeRawMentions()
	}

	return m.rawChannelMentions
}

// RawRoleMentions returns the role ids mentioned with <@&id> syntax.
func (m *Message) RawRoleMentions() []Snowflake {
	if !m.rawMentionsValid {
		m.computeRawMentions()
	}

	return m.rawRoleMentions
}

// ApplyUpdate patches the message in place with the fields present in a
// partial update payload. Absent fields keep their current value. The
// cached mention lists are invalidated when the content changes.
func (m *Message) ApplyUpdate(update MessageUpdate) {
	if update.Content != nil && *update.Content != m.Content {
		m.Content = *update.Content
		m.rawMentionsValid = false
		m.rawMentions = nil
		m.rawChannelMentions = nil
		m.rawRoleMentions = nil
	}

	if update.EditedTimestamp != nil {
		m.EditedTimestamp = *update.EditedTimestamp
	}

	if update.Pinned != nil {
		m.Pinned = *update.Pinned
	}

	if update.MentionEveryone != nil {
		m.MentionEveryone = *update.MentionEveryone
	}

	if update.Mentions != nil {
		m.Mentions = update.Mentions
	}

	if update.MentionRoles != nil {
		m.MentionRoles = update.MentionRoles
	}

	if update.Embeds != nil {
		m.Embeds = update.Embeds
	}

	if update.Attachments != nil {
		m.Attachments = update.Attachments
	}
}

// MessageAttachment represents a message attachment.
type MessageAttachment struct {
	ID       Snowflake `json:"id"`
	Filename string    `json:"filename"`
	Size     int32     `json:"size"`
	URL      string    `json:"url"`
	ProxyURL string    `json:"proxy_url"`
	Height   int32     `json:"height,omitempty"`
	Width    int32     `json:"width,omitempty"`
}

// Embed represents the rich embed attached to a message. Only the fields
// the core reads back are modelled; construction helpers are out of
// scope.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// MessageParams is the body of a message create request.
type MessageParams struct {
	Content string  `json:"content,omitempty"`
	TTS     bool    `json:"tts,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
	Nonce   string  `json:"nonce,omitempty"`
}

// MessageEditParams is the body of a message edit request.
type MessageEditParams struct {
	Content *string `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}
