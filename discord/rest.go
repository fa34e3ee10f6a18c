package discord

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// rest.go contains the endpoint helpers the session state and history
// layers call into. Rate limiting and retries are the responsibility of
// the RESTInterface implementation, not of these helpers.

// GatewayResponse is the response from the gateway endpoint, carrying
// the websocket URL to connect to.
type GatewayResponse struct {
	URL string `json:"url"`
}

// GatewayBotResponse additionally carries the recommended shard count
// and session start limits.
type GatewayBotResponse struct {
	URL               string            `json:"url"`
	Shards            int32             `json:"shards"`
	SessionStartLimit SessionStartLimit `json:"session_start_limit"`
}

type SessionStartLimit struct {
	Total          int32 `json:"total"`
	Remaining      int32 `json:"remaining"`
	ResetAfter     int32 `json:"reset_after"`
	MaxConcurrency int32 `json:"max_concurrency"`
}

func GetGateway(session *Session) (GatewayResponse, error) {
	var gatewayResponse GatewayResponse

	err := session.Interface.FetchJJ(session, http.MethodGet, "/gateway", nil, nil, &gatewayResponse)
	if err != nil {
		return gatewayResponse, fmt.Errorf("failed to get gateway: %w", err)
	}

	return gatewayResponse, nil
}

func GetGatewayBot(session *Session) (GatewayBotResponse, error) {
	var gatewayBotResponse GatewayBotResponse

	err := session.Interface.FetchJJ(session, http.MethodGet, "/gateway/bot", nil, nil, &gatewayBotResponse)
	if err != nil {
		return gatewayBotResponse, fmt.Errorf("failed to get gateway bot: %w", err)
	}

	return gatewayBotResponse, nil
}

func GetChannel(session *Session, channelID Snowflake) (*Channel, error) {
	var channel *Channel

	endpoint := "/channels/" + channelID.String()

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return channel, nil
}

// GetChannelMessages fetches one page of channel history. At most one of
// before, after and around may be set; limit is clamped by the caller.
func GetChannelMessages(session *Session, channelID Snowflake, around, before, after *Snowflake, limit *int32) ([]Message, error) {
	var messages []Message

	values := url.Values{}

	if around != nil {
		values.Set("around", around.String())
	}

	if before != nil {
		values.Set("before", before.String())
	}

	if after != nil {
		values.Set("after", after.String())
	}

	if limit != nil {
		values.Set("limit", strconv.Itoa(int(*limit)))
	}

	endpoint := "/channels/" + channelID.String() + "/messages"

	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &messages)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel messages: %w", err)
	}

	return messages, nil
}

func GetChannelMessage(session *Session, channelID, messageID Snowflake) (*Message, error) {
	var message *Message

	endpoint := "/channels/" + channelID.String() + "/messages/" + messageID.String()

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel message: %w", err)
	}

	return message, nil
}

func CreateMessage(session *Session, channelID Snowflake, messageParams MessageParams) (*Message, error) {
	var message *Message

	endpoint := "/channels/" + channelID.String() + "/messages"

	err := session.Interface.FetchJJ(session, http.MethodPost, endpoint, messageParams, nil, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return message, nil
}

func EditMessage(session *Session, channelID, messageID Snowflake, messageParams MessageEditParams) (*Message, error) {
	var message *Message

	endpoint := "/channels/" + channelID.String() + "/messages/" + messageID.String()

	err := session.Interface.FetchJJ(session, http.MethodPatch, endpoint, messageParams, nil, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}

	return message, nil
}

func DeleteMessage(session *Session, channelID, messageID Snowflake, reason *string) error {
	endpoint := "/channels/" + channelID.String() + "/messages/" + messageID.String()

	headers := http.Header{}

	if reason != nil {
		headers.Set(AuditLogReasonHeader, *reason)
	}

	err := session.Interface.FetchJJ(session, http.MethodDelete, endpoint, nil, headers, nil)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// BulkDeleteMessages issues a single bulk delete request. The caller is
// responsible for the 2..100 count window; the endpoint rejects counts
// outside it.
func BulkDeleteMessages(session *Session, channelID Snowflake, messageIDs []Snowflake, reason *string) error {
	endpoint := "/channels/" + channelID.String() + "/messages/bulk-delete"

	headers := http.Header{}

	if reason != nil {
		headers.Set(AuditLogReasonHeader, *reason)
	}

	body := struct {
		Messages []Snowflake `json:"messages"`
	}{messageIDs}

	err := session.Interface.FetchJJ(session, http.MethodPost, endpoint, body, headers, nil)
	if err != nil {
		return fmt.Errorf("failed to bulk delete messages: %w", err)
	}

	return nil
}

func GetGuild(session *Session, guildID Snowflake) (*Guild, error) {
	var guild *Guild

	endpoint := "/guilds/" + guildID.String()

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &guild)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}

	return guild, nil
}

func GetGuildMember(session *Session, guildID, userID Snowflake) (*GuildMember, error) {
	var guildMember *GuildMember

	endpoint := "/guilds/" + guildID.String() + "/members/" + userID.String()

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &guildMember)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild member: %w", err)
	}

	return guildMember, nil
}

func GetGuildChannels(session *Session, guildID Snowflake) ([]Channel, error) {
	var channels []Channel

	endpoint := "/guilds/" + guildID.String() + "/channels"

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &channels)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild channels: %w", err)
	}

	return channels, nil
}

// ModifyGuildChannelPositions reorders channels in bulk. Entries not
// named keep their position.
func ModifyGuildChannelPositions(session *Session, guildID Snowflake, channelPositions []ChannelPosition, reason *string) error {
	endpoint := "/guilds/" + guildID.String() + "/channels"

	headers := http.Header{}

	if reason != nil {
		headers.Set(AuditLogReasonHeader, *reason)
	}

	err := session.Interface.FetchJJ(session, http.MethodPatch, endpoint, channelPositions, headers, nil)
	if err != nil {
		return fmt.Errorf("failed to modify guild channel positions: %w", err)
	}

	return nil
}

func CreateChannelInvite(session *Session, channelID Snowflake, inviteParams InviteParams, reason *string) (*Invite, error) {
	var invite *Invite

	endpoint := "/channels/" + channelID.String() + "/invites"

	headers := http.Header{}

	if reason != nil {
		headers.Set(AuditLogReasonHeader, *reason)
	}

	err := session.Interface.FetchJJ(session, http.MethodPost, endpoint, inviteParams, headers, &invite)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel invite: %w", err)
	}

	return invite, nil
}

func GetChannelInvites(session *Session, channelID Snowflake) ([]Invite, error) {
	var invites []Invite

	endpoint := "/channels/" + channelID.String() + "/invites"

	err := session.Interface.FetchJJ(session, http.MethodGet, endpoint, nil, nil, &invites)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel invites: %w", err)
	}

	return invites, nil
}

func DeleteInvite(session *Session, inviteCode string, reason *string) (*Invite, error) {
	var invite *Invite

	endpoint := "/invites/" + inviteCode

	headers := http.Header{}

	if reason != nil {
		headers.Set(AuditLogReasonHeader, *reason)
	}

	err := session.Interface.FetchJJ(session, http.MethodDelete, endpoint, nil, headers, &invite)
	if err != nil {
		return nil, fmt.Errorf("failed to delete invite: %w", err)
	}

	return invite, nil
}

// AuditLogReasonHeader carries the optional reason string on moderation
// requests.
const AuditLogReasonHeader = "X-Audit-Log-Reason"
