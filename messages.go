package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/driftchat/drift/discord"
)

// SendMessage creates a message in a channel. When deleteAfter is
// non-nil the message is deleted in the background once the duration
// elapses; deletion failures are swallowed, the message may already be
// gone.
func SendMessage(ctx context.Context, session *discord.Session, channelID discord.Snowflake, messageParams discord.MessageParams, deleteAfter *time.Duration) (*discord.Message, error) {
	message, err := discord.CreateMessage(session, channelID, messageParams)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	if deleteAfter != nil {
		go deleteMessageAfter(ctx, session, channelID, message.ID, *deleteAfter)
	}

	return message, nil
}

func deleteMessageAfter(ctx context.Context, session *discord.Session, channelID, messageID discord.Snowflake, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	_ = discord.DeleteMessage(session, channelID, messageID, nil)
}
