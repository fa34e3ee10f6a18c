package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/driftchat/drift/discord"
)

// history.go implements channel history pagination and bulk deletion on
// top of the rest layer.

const (
	historyPageSize = 100

	// Messages older than this cannot be bulk deleted and fall back to
	// individual deletes.
	bulkDeleteMaxAge = 14 * 24 * time.Hour
)

// purgeBatchDelay spaces out consecutive full bulk delete requests.
var purgeBatchDelay = time.Second

// HistoryOptions bound a history walk. At most one of Around, and the
// Before/After pair being both set, is meaningful: Around fetches a
// single window and ignores paging.
type HistoryOptions struct {
	// Limit caps the number of messages yielded. Nil walks the entire
	// history. The zero value of HistoryOptions uses DefaultHistoryLimit.
	Limit *int

	Before discord.Snowflake
	After  discord.Snowflake
	Around discord.Snowflake

	// OldestFirst flips iteration order. When only After is set the
	// walk is oldest-first regardless.
	OldestFirst bool
}

var DefaultHistoryLimit = 100

// HistoryIterator walks a channel's messages newest-first, fetching
// pages of up to 100 lazily. It is not safe for concurrent use.
type HistoryIterator struct {
	session   *discord.Session
	channelID discord.Snowflake

	limit       *int
	before      discord.Snowflake
	after       discord.Snowflake
	around      discord.Snowflake
	oldestFirst bool

	buffer    []discord.Message
	exhausted bool
}

// NewHistoryIterator creates an iterator over a channel's history. A nil
// options struct yields the newest DefaultHistoryLimit messages.
func NewHistoryIterator(session *discord.Session, channelID discord.Snowflake, options *HistoryOptions) *HistoryIterator {
	it := &HistoryIterator{
		session:   session,
		channelID: channelID,
	}

	if options == nil {
		limit := DefaultHistoryLimit
		it.limit = &limit

		return it
	}

	if options.Limit != nil {
		limit := *options.Limit
		it.limit = &limit
	} else {
		limit := DefaultHistoryLimit
		it.limit = &limit
	}

	it.before = options.Before
	it.after = options.After
	it.around = options.Around

	// Paging on an after bound alone only works oldest-first.
	it.oldestFirst = options.OldestFirst || (!options.After.IsNil() && options.Before.IsNil() && options.Around.IsNil())

	return it
}

// NewUnboundedHistoryIterator walks the entire channel history.
func NewUnboundedHistoryIterator(session *discord.Session, channelID discord.Snowflake, options *HistoryOptions) *HistoryIterator {
	if options == nil {
		options = &HistoryOptions{}
	}

	options.Limit = nil

	it := NewHistoryIterator(session, channelID, options)
	it.limit = nil

	return it
}

// Next returns the next message, fetching the next page when the buffer
// runs dry. It returns ErrNoMoreMessages when the walk is complete.
func (it *HistoryIterator) Next() (discord.Message, error) {
	if len(it.buffer) == 0 {
		if err := it.fill(); err != nil {
			return discord.Message{}, err
		}
	}

	if len(it.buffer) == 0 {
		return discord.Message{}, ErrNoMoreMessages
	}

	message := it.buffer[0]
	it.buffer = it.buffer[1:]

	return message, nil
}

// Flatten drains the iterator into a slice.
func (it *HistoryIterator) Flatten() ([]discord.Message, error) {
	var messages []discord.Message

	for {
		message, err := it.Next()
		if err != nil {
			if err == ErrNoMoreMessages {
				return messages, nil
			}

			return messages, err
		}

		messages = append(messages, message)
	}
}

func (it *HistoryIterator) pageSize() int32 {
	if it.limit == nil || *it.limit > historyPageSize {
		return historyPageSize
	}

	return int32(*it.limit)
}

func (it *HistoryIterator) fill() error {
	if it.exhausted {
		return nil
	}

	if it.limit != nil && *it.limit <= 0 {
		it.exhausted = true

		return nil
	}

	size := it.pageSize()
	if size <= 0 {
		it.exhausted = true

		return nil
	}

	var messages []discord.Message
	var err error

	switch {
	case !it.around.IsNil():
		// An around window is a single request, never paged.
		messages, err = discord.GetChannelMessages(it.session, it.channelID, &it.around, nil, nil, &size)

		it.exhausted = true
	case it.oldestFirst:
		after := it.after
		messages, err = discord.GetChannelMessages(it.session, it.channelID, nil, nil, &after, &size)
	default:
		var before *discord.Snowflake
		if !it.before.IsNil() {
			b := it.before
			before = &b
		}

		messages, err = discord.GetChannelMessages(it.session, it.channelID, nil, before, nil, &size)
	}

	if err != nil {
		return fmt.Errorf("failed to fetch history page: %w", err)
	}

	if int32(len(messages)) < size {
		it.exhausted = true
	}

	if len(messages) == 0 {
		return nil
	}

	// The endpoint returns pages newest-first.
	if it.oldestFirst {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}

		it.after = messages[len(messages)-1].ID
	} else {
		it.before = messages[len(messages)-1].ID
	}

	if it.limit != nil {
		if len(messages) > *it.limit {
			messages = messages[:*it.limit]
		}

		*it.limit -= len(messages)
	}

	it.buffer = append(it.buffer, messages...)

	return nil
}

// DeleteMessages deletes messages from a channel in a single call. One
// id issues a plain delete; two to a hundred issue one bulk request.
// Zero ids or more than a hundred are rejected.
func DeleteMessages(session *discord.Session, channelID discord.Snowflake, messageIDs []discord.Snowflake, reason *string) error {
	switch {
	case len(messageIDs) == 0:
		return fmt.Errorf("%w: no messages to delete", ErrInvalidArgument)
	case len(messageIDs) == 1:
		return discord.DeleteMessage(session, channelID, messageIDs[0], reason)
	case len(messageIDs) > historyPageSize:
		return fmt.Errorf("%w: at most %d messages per bulk delete", ErrInvalidArgument, historyPageSize)
	}

	return discord.BulkDeleteMessages(session, channelID, messageIDs, reason)
}

// PurgeOptions bound a purge. Check filters which messages are deleted;
// a nil Check deletes everything the walk yields.
type PurgeOptions struct {
	HistoryOptions

	Check  func(message discord.Message) bool
	Reason *string
}

// Purge walks the channel history and deletes every matching message,
// batching deletions into bulk requests of up to 100. Messages too old
// to bulk delete are removed individually. It returns the deleted
// messages.
func Purge(ctx context.Context, session *discord.Session, channelID discord.Snowflake, options *PurgeOptions) ([]discord.Message, error) {
	if options == nil {
		options = &PurgeOptions{}
	}

	it := NewHistoryIterator(session, channelID, &options.HistoryOptions)

	bulkCutoff := discord.SnowflakeFromTime(time.Now().Add(-bulkDeleteMaxAge))

	var deleted []discord.Message
	var batch []discord.Snowflake

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		err := DeleteMessages(session, channelID, batch, options.Reason)
		if err != nil {
			return err
		}

		batch = batch[:0]

		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		message, err := it.Next()
		if err != nil {
			if err == ErrNoMoreMessages {
				break
			}

			return deleted, err
		}

		if options.Check != nil && !options.Check(message) {
			continue
		}

		if message.ID < bulkCutoff {
			// Too old for a bulk request. Flush what we have, then
			// delete the stragglers one by one.
			if err := flush(); err != nil {
				return deleted, err
			}

			err = discord.DeleteMessage(session, channelID, message.ID, options.Reason)
			if err != nil {
				return deleted, err
			}

			deleted = append(deleted, message)

			continue
		}

		batch = append(batch, message.ID)
		deleted = append(deleted, message)

		if len(batch) == historyPageSize {
			if err := flush(); err != nil {
				return deleted, err
			}

			// Space out consecutive full batches.
			select {
			case <-ctx.Done():
				return deleted, ctx.Err()
			case <-time.After(purgeBatchDelay):
			}
		}
	}

	if err := flush(); err != nil {
		return deleted, err
	}

	return deleted, nil
}
