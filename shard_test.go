package drift

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(context.Background(), &Configuration{
		Identifier: "test",
		BotToken:   "test-token",
	})
	require.NoError(t, err)

	producer, err := client.producerProvider.GetProducer(context.Background(), "test")
	require.NoError(t, err)

	client.producer = producer

	return client
}

// scriptedConn is a gatewayConn fed from a queue of frames.
type scriptedConn struct {
	mu     sync.Mutex
	frames chan []byte
	writes [][]byte

	closed    chan struct{}
	closeOnce sync.Once
	closeCode websocket.StatusCode
}

func newScriptedConn() *scriptedConn {
	return &scriptedConn{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *scriptedConn) queue(t *testing.T, op discord.GatewayOp, eventType string, sequence int32, data any) {
	t.Helper()

	raw, err := driftjson.Marshal(data)
	require.NoError(t, err)

	frame, err := driftjson.Marshal(discord.GatewayPayload{
		Op:       op,
		Type:     eventType,
		Sequence: sequence,
		Data:     raw,
	})
	require.NoError(t, err)

	c.frames <- frame
}

func (c *scriptedConn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case frame := <-c.frames:
		return websocket.MessageText, frame, nil
	case <-c.closed:
		return 0, nil, websocket.CloseError{Code: websocket.StatusNormalClosure}
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (c *scriptedConn) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writes = append(c.writes, append([]byte(nil), p...))

	return nil
}

func (c *scriptedConn) Close(code websocket.StatusCode, _ string) error {
	c.closeOnce.Do(func() {
		c.closeCode = code
		close(c.closed)
	})

	return nil
}

type sentPayload struct {
	Op   discord.GatewayOp   `json:"op"`
	Data driftjson.RawMessage `json:"d"`
}

// sent returns every written payload of the given op.
func (c *scriptedConn) sent(t *testing.T, op discord.GatewayOp) []sentPayload {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	var payloads []sentPayload

	for _, raw := range c.writes {
		var payload sentPayload

		require.NoError(t, driftjson.Unmarshal(raw, &payload))

		if payload.Op == op {
			payloads = append(payloads, payload)
		}
	}

	return payloads
}

func newTestShard(t *testing.T, conn *scriptedConn) (*Shard, *Client) {
	t.Helper()

	client := newTestClient(t)
	client.ShardCount.Store(1)

	shard := NewShard(client, 0)
	shard.dial = func(_ context.Context, _ string) (gatewayConn, error) {
		return conn, nil
	}

	return shard, client
}

func TestShardConnectIdentifies(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	conn.queue(t, discord.GatewayOpHello, "", 0, discord.Hello{HeartbeatInterval: 45000})

	shard, client := newTestShard(t, conn)

	var dialedURL string

	shard.dial = func(_ context.Context, websocketURL string) (gatewayConn, error) {
		dialedURL = websocketURL

		return conn, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, shard.Connect(ctx))

	assert.Contains(t, dialedURL, "gateway.discord.gg")
	assert.Contains(t, dialedURL, "v=10")

	identifies := conn.sent(t, discord.GatewayOpIdentify)
	require.Len(t, identifies, 1)

	var identify discord.Identify

	require.NoError(t, driftjson.Unmarshal(identifies[0].Data, &identify))

	assert.Equal(t, client.Configuration.BotToken, identify.Token)
	assert.Equal(t, [2]int32{0, 1}, identify.Shard)
	assert.Equal(t, GatewayLargeThreshold, identify.LargeThreshold)
	assert.True(t, identify.Compress)
}

func TestShardConnectResumes(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	conn.queue(t, discord.GatewayOpHello, "", 0, discord.Hello{HeartbeatInterval: 45000})

	shard, _ := newTestShard(t, conn)

	sessionID := "abc"
	shard.sessionID.Store(&sessionID)
	shard.sequence.Store(42)

	resumeGatewayURL := "wss://resume.example"
	shard.resumeGatewayURL.Store(&resumeGatewayURL)

	var dialedURL string

	shard.dial = func(_ context.Context, websocketURL string) (gatewayConn, error) {
		dialedURL = websocketURL

		return conn, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, shard.Connect(ctx))

	assert.Equal(t, "wss://resume.example?v=10&encoding=json", dialedURL)

	require.Empty(t, conn.sent(t, discord.GatewayOpIdentify))

	resumes := conn.sent(t, discord.GatewayOpResume)
	require.Len(t, resumes, 1)

	var resume discord.Resume

	require.NoError(t, driftjson.Unmarshal(resumes[0].Data, &resume))

	assert.Equal(t, "abc", resume.SessionID)
	assert.Equal(t, int32(42), resume.Sequence)
}

func TestShardConnectRejectsInvalidHeartbeatInterval(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	conn.queue(t, discord.GatewayOpHello, "", 0, discord.Hello{HeartbeatInterval: 0})

	shard, _ := newTestShard(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := shard.Connect(ctx)
	require.ErrorIs(t, err, ErrShardInvalidHeartbeatInterval)
}

func TestShardListenInvalidSession(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()

	shard, _ := newTestShard(t, conn)
	shard.conn = conn

	// A non-resumable invalid session forces a fresh identify.
	conn.queue(t, discord.GatewayOpInvalidSession, "", 0, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcome, err := shard.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, outcomeReidentify, outcome)
	assert.Equal(t, WebsocketReconnectCloseCode, conn.closeCode)
}

func TestShardListenReconnectRequest(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()

	shard, _ := newTestShard(t, conn)
	shard.conn = conn

	conn.queue(t, discord.GatewayOpReconnect, "", 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcome, err := shard.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, outcomeResume, outcome)
}

func TestShardListenAnswersHeartbeatRequest(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()

	shard, _ := newTestShard(t, conn)
	shard.conn = conn
	shard.sequence.Store(7)

	conn.queue(t, discord.GatewayOpHeartbeat, "", 0, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		// Give the heartbeat answer a moment to be written, then end the
		// read loop.
		time.Sleep(50 * time.Millisecond)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	outcome, err := shard.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, outcomeResume, outcome)

	heartbeats := conn.sent(t, discord.GatewayOpHeartbeat)
	require.Len(t, heartbeats, 1)
	assert.Equal(t, "7", string(heartbeats[0].Data))
}

func TestShardListenStopsHeartbeat(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	conn.queue(t, discord.GatewayOpHello, "", 0, discord.Hello{HeartbeatInterval: 45000})

	shard, _ := newTestShard(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, shard.Connect(ctx))

	require.Eventually(t, func() bool {
		return shard.HeartbeatActive.Load()
	}, time.Second, 5*time.Millisecond)

	conn.queue(t, discord.GatewayOpReconnect, "", 0, nil)

	outcome, err := shard.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, outcomeResume, outcome)

	// The old connection's heartbeat goroutine must not survive into
	// the next connection.
	require.Eventually(t, func() bool {
		return !shard.HeartbeatActive.Load()
	}, time.Second, 5*time.Millisecond)
}

func TestShardSignalsReadyOnce(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	conn.queue(t, discord.GatewayOpHello, "", 0, discord.Hello{HeartbeatInterval: 45000})

	shard, client := newTestShard(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, shard.Connect(ctx))

	conn.queue(t, discord.GatewayOpDispatch, discord.EventReady, 1, discord.Ready{
		SessionID:        "session",
		ResumeGatewayURL: "wss://resume.example",
		User:             discord.User{ID: 1, Username: "bot"},
	})

	done := make(chan struct{})

	go func() {
		shard.Listen(ctx)
		close(done)
	}()

	select {
	case <-shard.ready:
	case <-time.After(3 * time.Second):
		t.Fatal("shard never signalled ready")
	}

	// READY is signalled exactly once.
	select {
	case <-shard.ready:
		t.Fatal("ready signalled twice")
	default:
	}

	require.NotNil(t, shard.sessionID.Load())
	assert.Equal(t, "session", *shard.sessionID.Load())

	require.NotNil(t, client.User.Load())
	assert.Equal(t, discord.Snowflake(1), client.User.Load().ID)

	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

func TestShardOnReadError(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn()
	shard, _ := newTestShard(t, conn)

	for _, tt := range []struct {
		name    string
		err     error
		outcome loopOutcome
		wantErr bool
	}{
		{"context canceled", context.Canceled, outcomeNormalClose, false},
		{"authentication failed", websocket.CloseError{Code: discord.CloseAuthenticationFailed}, outcomeFatal, true},
		{"disallowed intents", websocket.CloseError{Code: discord.CloseDisallowedIntents}, outcomeFatal, true},
		{"invalid sequence", websocket.CloseError{Code: discord.CloseInvalidSeq}, outcomeReidentify, false},
		{"session timeout", websocket.CloseError{Code: discord.CloseSessionTimeout}, outcomeReidentify, false},
		{"rate limited", websocket.CloseError{Code: discord.CloseRateLimited}, outcomeResume, false},
		{"transport error", errors.New("connection reset"), outcomeResume, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := shard.onReadError(tt.err)

			assert.Equal(t, tt.outcome, outcome)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsStatusCodeRecoverable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsStatusCodeRecoverable(discord.CloseUnknownError))
	assert.True(t, IsStatusCodeRecoverable(discord.CloseRateLimited))
	assert.True(t, IsStatusCodeRecoverable(discord.CloseInvalidSeq))

	assert.False(t, IsStatusCodeRecoverable(discord.CloseAuthenticationFailed))
	assert.False(t, IsStatusCodeRecoverable(discord.CloseInvalidShard))
	assert.False(t, IsStatusCodeRecoverable(discord.CloseShardingRequired))
	assert.False(t, IsStatusCodeRecoverable(discord.CloseInvalidIntents))
	assert.False(t, IsStatusCodeRecoverable(discord.CloseDisallowedIntents))
}
