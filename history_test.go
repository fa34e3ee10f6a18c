package drift_test

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	drift "github.com/driftchat/drift"
	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRESTInterface serves channel history pages from an in-memory store
// and records deletions. Messages are held newest-first, matching the
// wire order of the history endpoint.
type fakeRESTInterface struct {
	mu sync.Mutex

	messages []discord.Message

	pageRequests  int
	singleDeletes []discord.Snowflake
	bulkDeletes   [][]discord.Snowflake
}

func (f *fakeRESTInterface) Fetch(_ *discord.Session, _, _, _ string, _ []byte, _ http.Header) ([]byte, error) {
	return nil, nil
}

func (f *fakeRESTInterface) FetchBJ(_ *discord.Session, _, _, _ string, _ []byte, _ http.Header, _ interface{}) error {
	return nil
}

func (f *fakeRESTInterface) FetchJJ(_ *discord.Session, method, endpoint string, payload interface{}, _ http.Header, response interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return err
	}

	switch {
	case method == http.MethodGet && strings.HasSuffix(parsed.Path, "/messages"):
		f.pageRequests++

		return respond(response, f.page(parsed.Query()))
	case method == http.MethodPost && strings.HasSuffix(parsed.Path, "/messages/bulk-delete"):
		raw, err := driftjson.Marshal(payload)
		if err != nil {
			return err
		}

		var body struct {
			Messages []discord.Snowflake `json:"messages"`
		}

		if err := driftjson.Unmarshal(raw, &body); err != nil {
			return err
		}

		f.bulkDeletes = append(f.bulkDeletes, body.Messages)

		return nil
	case method == http.MethodDelete:
		parts := strings.Split(parsed.Path, "/")

		id, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
		if err != nil {
			return err
		}

		f.singleDeletes = append(f.singleDeletes, discord.Snowflake(id))

		return nil
	}

	return nil
}

func (f *fakeRESTInterface) SetDebug(_ bool) {}

func (f *fakeRESTInterface) page(values url.Values) []discord.Message {
	limit := 50

	if raw := values.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	filtered := make([]discord.Message, 0, len(f.messages))

	switch {
	case values.Get("before") != "":
		before, _ := strconv.ParseInt(values.Get("before"), 10, 64)

		for _, message := range f.messages {
			if int64(message.ID) < before {
				filtered = append(filtered, message)
			}
		}
	case values.Get("after") != "":
		after, _ := strconv.ParseInt(values.Get("after"), 10, 64)

		for _, message := range f.messages {
			if int64(message.ID) > after {
				filtered = append(filtered, message)
			}
		}

		// The page closest to the bound comes first; order within the
		// page stays newest-first.
		if len(filtered) > limit {
			filtered = filtered[len(filtered)-limit:]
		}
	default:
		filtered = append(filtered, f.messages...)
	}

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return filtered
}

func respond(response any, data any) error {
	raw, err := driftjson.Marshal(data)
	if err != nil {
		return err
	}

	return driftjson.Unmarshal(raw, response)
}

// storeMessages fills the fake with count messages, ids descending from
// the given newest id.
func storeMessages(f *fakeRESTInterface, newest discord.Snowflake, count int) {
	for i := 0; i < count; i++ {
		f.messages = append(f.messages, discord.Message{
			ID:      newest - discord.Snowflake(i),
			Content: "message " + strconv.Itoa(int(newest)-i),
		})
	}
}

func newHistorySession(f *fakeRESTInterface) *discord.Session {
	return discord.NewSession(context.Background(), "Bot test", f)
}

func TestHistoryIteratorDefaultLimit(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 250, 250)

	session := newHistorySession(rest)

	messages, err := drift.NewHistoryIterator(session, 1, nil).Flatten()
	require.NoError(t, err)

	require.Len(t, messages, drift.DefaultHistoryLimit)
	assert.Equal(t, discord.Snowflake(250), messages[0].ID)
	assert.Equal(t, discord.Snowflake(151), messages[len(messages)-1].ID)
}

func TestHistoryIteratorLimit(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 10, 10)

	session := newHistorySession(rest)

	limit := 5

	messages, err := drift.NewHistoryIterator(session, 1, &drift.HistoryOptions{Limit: &limit}).Flatten()
	require.NoError(t, err)

	require.Len(t, messages, 5)

	// Newest-first by default.
	for i, message := range messages {
		assert.Equal(t, discord.Snowflake(10-i), message.ID)
	}
}

func TestHistoryIteratorUnboundedPaging(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 250, 250)

	session := newHistorySession(rest)

	messages, err := drift.NewUnboundedHistoryIterator(session, 1, nil).Flatten()
	require.NoError(t, err)

	require.Len(t, messages, 250)
	assert.Equal(t, discord.Snowflake(250), messages[0].ID)
	assert.Equal(t, discord.Snowflake(1), messages[len(messages)-1].ID)

	// 250 messages come in pages of 100.
	assert.Equal(t, 3, rest.pageRequests)
}

func TestHistoryIteratorAfterIsOldestFirst(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 10, 10)

	session := newHistorySession(rest)

	messages, err := drift.NewHistoryIterator(session, 1, &drift.HistoryOptions{After: 3}).Flatten()
	require.NoError(t, err)

	require.Len(t, messages, 7)

	// An after bound alone walks oldest-first.
	for i, message := range messages {
		assert.Equal(t, discord.Snowflake(4+i), message.ID)
	}
}

func TestHistoryIteratorAroundIsSingleShot(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 10, 10)

	session := newHistorySession(rest)

	it := drift.NewHistoryIterator(session, 1, &drift.HistoryOptions{Around: 5})

	messages, err := it.Flatten()
	require.NoError(t, err)

	assert.NotEmpty(t, messages)
	assert.Equal(t, 1, rest.pageRequests)

	_, err = it.Next()
	assert.ErrorIs(t, err, drift.ErrNoMoreMessages)
}

func TestHistoryIteratorExhausted(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	storeMessages(rest, 3, 3)

	session := newHistorySession(rest)

	it := drift.NewUnboundedHistoryIterator(session, 1, nil)

	messages, err := it.Flatten()
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// A short page ends the walk without another request.
	assert.Equal(t, 1, rest.pageRequests)

	_, err = it.Next()
	assert.ErrorIs(t, err, drift.ErrNoMoreMessages)
}

func TestDeleteMessages(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}
	session := newHistorySession(rest)

	err := drift.DeleteMessages(session, 1, nil, nil)
	assert.ErrorIs(t, err, drift.ErrInvalidArgument)

	tooMany := make([]discord.Snowflake, 101)
	for i := range tooMany {
		tooMany[i] = discord.Snowflake(i + 1)
	}

	err = drift.DeleteMessages(session, 1, tooMany, nil)
	assert.ErrorIs(t, err, drift.ErrInvalidArgument)

	// One id is a plain delete, not a bulk request.
	require.NoError(t, drift.DeleteMessages(session, 1, []discord.Snowflake{7}, nil))
	assert.Equal(t, []discord.Snowflake{7}, rest.singleDeletes)
	assert.Empty(t, rest.bulkDeletes)

	require.NoError(t, drift.DeleteMessages(session, 1, []discord.Snowflake{8, 9, 10}, nil))
	require.Len(t, rest.bulkDeletes, 1)
	assert.Equal(t, []discord.Snowflake{8, 9, 10}, rest.bulkDeletes[0])
}

func TestPurgeBatches(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}

	// Recent messages are eligible for bulk deletion.
	newest := discord.SnowflakeFromTime(time.Now().Add(-time.Hour))
	storeMessages(rest, newest, 150)

	session := newHistorySession(rest)

	limit := 150

	deleted, err := drift.Purge(context.Background(), session, 1, &drift.PurgeOptions{
		HistoryOptions: drift.HistoryOptions{Limit: &limit},
	})
	require.NoError(t, err)

	assert.Len(t, deleted, 150)
	require.Len(t, rest.bulkDeletes, 2)
	assert.Len(t, rest.bulkDeletes[0], 100)
	assert.Len(t, rest.bulkDeletes[1], 50)
	assert.Empty(t, rest.singleDeletes)
}

func TestPurgeOldMessagesDeletedIndividually(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}

	// Messages past the bulk delete age fall back to single deletes.
	newest := discord.SnowflakeFromTime(time.Now().Add(-30 * 24 * time.Hour))
	storeMessages(rest, newest, 3)

	session := newHistorySession(rest)

	deleted, err := drift.Purge(context.Background(), session, 1, nil)
	require.NoError(t, err)

	assert.Len(t, deleted, 3)
	assert.Empty(t, rest.bulkDeletes)
	assert.Len(t, rest.singleDeletes, 3)
}

func TestPurgeCheckFilters(t *testing.T) {
	t.Parallel()

	rest := &fakeRESTInterface{}

	newest := discord.SnowflakeFromTime(time.Now().Add(-time.Hour))
	storeMessages(rest, newest, 10)

	session := newHistorySession(rest)

	keep := newest - 4

	deleted, err := drift.Purge(context.Background(), session, 1, &drift.PurgeOptions{
		Check: func(message discord.Message) bool {
			return message.ID != keep
		},
	})
	require.NoError(t, err)

	assert.Len(t, deleted, 9)

	for _, message := range deleted {
		assert.NotEqual(t, keep, message.ID)
	}
}
