package discord

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	gotils_strconv "github.com/savsgio/gotils/strconv"
)

const (
	epochMilli = 1420070400000

	bitSize            = 64
	decimalBase        = 10
	maxInt64JsonLength = 22

	snowflakeTimestampShift = 22
)

var null = []byte("null")

// Snowflake is the 64 bit identifier used for every entity. The upper
// bits encode the creation timestamp. It is transported as a JSON string.
type Snowflake int64

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	if !bytes.Equal(b, null) {
		i, err := strconv.ParseInt(gotils_strconv.B2S(b[1:len(b)-1]), decimalBase, bitSize)
		if err != nil {
			return fmt.Errorf("failed to unmarshal json: %w", err)
		}

		*s = Snowflake(i)
	}

	return nil
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	buff := make([]byte, 0, maxInt64JsonLength)
	buff = append(buff, '"')
	buff = strconv.AppendInt(buff, int64(s), decimalBase)
	buff = append(buff, '"')

	return buff, nil
}

func (s Snowflake) String() string {
	return strconv.FormatInt(int64(s), decimalBase)
}

func (s Snowflake) IsNil() bool {
	return s == 0
}

// Time returns the creation time of the Snowflake.
func (s Snowflake) Time() time.Time {
	msec := (int64(s) >> snowflakeTimestampShift) + epochMilli

	return time.Unix(0, msec*int64(time.Millisecond))
}

// SnowflakeFromTime returns the lowest Snowflake that could have been
// created at the given time. Useful as a pagination bound.
func SnowflakeFromTime(t time.Time) Snowflake {
	return Snowflake((t.UnixMilli() - epochMilli) << snowflakeTimestampShift)
}

// Int64 is an int64 transported as a JSON string, matching how the wire
// format serialises large integers such as permission bitmasks.
type Int64 int64

func (in *Int64) UnmarshalJSON(b []byte) error {
	if !bytes.Equal(b, null) {
		if b[0] == '"' {
			b = b[1 : len(b)-1]
		}

		i, err := strconv.ParseInt(gotils_strconv.B2S(b), decimalBase, bitSize)
		if err != nil {
			return fmt.Errorf("failed to unmarshal json: %w", err)
		}

		*in = Int64(i)
	}

	return nil
}

func (in Int64) MarshalJSON() ([]byte, error) {
	buff := make([]byte, 0, maxInt64JsonLength)
	buff = append(buff, '"')
	buff = strconv.AppendInt(buff, int64(in), decimalBase)
	buff = append(buff, '"')

	return buff, nil
}

func (in Int64) String() string {
	return strconv.FormatInt(int64(in), decimalBase)
}

// Timestamp is an RFC3339 timestamp as transported by the API.
type Timestamp time.Time

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, null) || len(b) < 2 {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, gotils_strconv.B2S(b[1:len(b)-1]))
	if err != nil {
		return fmt.Errorf("failed to unmarshal timestamp: %w", err)
	}

	*t = Timestamp(parsed)

	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return null, nil
	}

	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
