package discord_test

import (
	"testing"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelOverrideTypeJSON(t *testing.T) {
	t.Parallel()

	var overrideType discord.ChannelOverrideType

	// Both the legacy string form and the integer form are accepted.
	require.NoError(t, driftjson.Unmarshal([]byte(`"role"`), &overrideType))
	assert.Equal(t, discord.ChannelOverrideTypeRole, overrideType)

	require.NoError(t, driftjson.Unmarshal([]byte(`"member"`), &overrideType))
	assert.Equal(t, discord.ChannelOverrideTypeMember, overrideType)

	require.NoError(t, driftjson.Unmarshal([]byte(`0`), &overrideType))
	assert.Equal(t, discord.ChannelOverrideTypeRole, overrideType)

	require.NoError(t, driftjson.Unmarshal([]byte(`1`), &overrideType))
	assert.Equal(t, discord.ChannelOverrideTypeMember, overrideType)

	data, err := driftjson.Marshal(discord.ChannelOverrideTypeMember)
	require.NoError(t, err)
	assert.Equal(t, `1`, string(data))
}

func TestChannelOverwriteJSON(t *testing.T) {
	t.Parallel()

	raw := `{"id":"100","type":"role","allow":"1024","deny":"2048"}`

	var overwrite discord.ChannelOverwrite

	require.NoError(t, driftjson.Unmarshal([]byte(raw), &overwrite))

	assert.Equal(t, discord.Snowflake(100), overwrite.ID)
	assert.Equal(t, discord.ChannelOverrideTypeRole, overwrite.Type)
	assert.True(t, overwrite.Allow.Has(discord.PermissionViewChannel))
	assert.True(t, overwrite.Deny.Has(discord.PermissionSendMessages))
}

func TestChannelTypeClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, discord.ChannelTypeGuildText.IsText())
	assert.True(t, discord.ChannelTypeDM.IsText())
	assert.True(t, discord.ChannelTypeGuildNews.IsText())
	assert.False(t, discord.ChannelTypeGuildVoice.IsText())
	assert.False(t, discord.ChannelTypeGuildCategory.IsText())

	assert.True(t, discord.ChannelTypeGuildText.IsGuild())
	assert.True(t, discord.ChannelTypeGuildVoice.IsGuild())
	assert.False(t, discord.ChannelTypeDM.IsGuild())
	assert.False(t, discord.ChannelTypeGroupDM.IsGuild())
}
