package discord_test

import (
	"testing"
	"time"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeJSON(t *testing.T) {
	t.Parallel()

	var snowflake discord.Snowflake

	require.NoError(t, driftjson.Unmarshal([]byte(`"175928847299117063"`), &snowflake))
	assert.Equal(t, discord.Snowflake(175928847299117063), snowflake)

	data, err := driftjson.Marshal(snowflake)
	require.NoError(t, err)
	assert.Equal(t, `"175928847299117063"`, string(data))

	// Null leaves the value untouched.
	require.NoError(t, driftjson.Unmarshal([]byte(`null`), &snowflake))
	assert.Equal(t, discord.Snowflake(175928847299117063), snowflake)
}

func TestSnowflakeTime(t *testing.T) {
	t.Parallel()

	at := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)

	snowflake := discord.SnowflakeFromTime(at)
	assert.True(t, snowflake.Time().Equal(at))
}

func TestSnowflakeOrdering(t *testing.T) {
	t.Parallel()

	earlier := discord.SnowflakeFromTime(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC))
	later := discord.SnowflakeFromTime(time.Date(2023, time.June, 2, 0, 0, 0, 0, time.UTC))

	assert.Less(t, earlier, later)
}

func TestInt64JSON(t *testing.T) {
	t.Parallel()

	var value discord.Int64

	// Both string and bare integer encodings appear on the wire.
	require.NoError(t, driftjson.Unmarshal([]byte(`"104324673"`), &value))
	assert.Equal(t, discord.Int64(104324673), value)

	require.NoError(t, driftjson.Unmarshal([]byte(`104324673`), &value))
	assert.Equal(t, discord.Int64(104324673), value)

	data, err := driftjson.Marshal(value)
	require.NoError(t, err)
	assert.Equal(t, `"104324673"`, string(data))
}

func TestPermissionsJSON(t *testing.T) {
	t.Parallel()

	var permissions discord.Permissions

	require.NoError(t, driftjson.Unmarshal([]byte(`"2048"`), &permissions))
	assert.True(t, permissions.Has(discord.PermissionSendMessages))

	data, err := driftjson.Marshal(permissions)
	require.NoError(t, err)
	assert.Equal(t, `"2048"`, string(data))
}

func TestTimestampJSON(t *testing.T) {
	t.Parallel()

	var timestamp discord.Timestamp

	require.NoError(t, driftjson.Unmarshal([]byte(`"2023-06-01T12:00:00Z"`), &timestamp))
	assert.True(t, timestamp.Time().Equal(time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)))

	var zero discord.Timestamp

	data, err := driftjson.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, `null`, string(data))
}
