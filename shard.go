package drift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/WelcomerTeam/czlib"
	"github.com/coder/websocket"
	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
	"github.com/driftchat/drift/pkg/limiter"
	"github.com/driftchat/drift/pkg/syncmap"
)

var (
	// Number of retries to attempt before giving up on a shard
	ShardConnectRetries = int32(3)

	// Number of heartbeats that can fail before the shard is considered dead
	ShardMaxHeartbeatFailures = int32(5)

	GatewayLargeThreshold = int32(100)
)

var gatewayURL = url.URL{
	Scheme: "wss",
	Host:   "gateway.discord.gg",
}

// WebsocketReconnectCloseCode is resumable: closing with it keeps the
// session alive on the gateway side.
const WebsocketReconnectCloseCode = websocket.StatusCode(4000)

// gatewayConn is the subset of the websocket connection the shard uses.
// Tests substitute their own implementation through the dial field.
type gatewayConn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

func dialGateway(ctx context.Context, websocketURL string) (gatewayConn, error) {
	conn, _, err := websocket.Dial(ctx, websocketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}

	conn.SetReadLimit(-1)

	return conn, nil
}

// loopAction is what a gateway opcode handler asks the read loop to do
// next. Handlers never tear down or rebuild connections themselves.
type loopAction int

const (
	actionContinue loopAction = iota
	actionResume
	actionReidentify
	actionClose
)

// loopOutcome is the reason the read loop exited. The connect loop in
// Start maps each outcome onto the next connection attempt.
type loopOutcome int

const (
	outcomeNormalClose loopOutcome = iota
	outcomeResume
	outcomeReidentify
	outcomeFatal
)

type Shard struct {
	Logger *slog.Logger

	client *Client

	ShardID int32

	retriesRemaining *atomic.Int32
	StartedAt        *atomic.Pointer[time.Time]
	InitializedAt    *atomic.Pointer[time.Time]

	HeartbeatActive   *atomic.Bool
	LastHeartbeatAck  *atomic.Pointer[time.Time]
	LastHeartbeatSent *atomic.Pointer[time.Time]
	GatewayLatency    *atomic.Int64

	heartbeater              *time.Ticker
	heartbeatInterval        *atomic.Pointer[time.Duration]
	heartbeatFailureInterval *atomic.Pointer[time.Duration]

	UnavailableGuilds *syncmap.Map[discord.Snowflake, bool]
	LazyGuilds        *syncmap.Map[discord.Snowflake, bool]
	Guilds            *syncmap.Map[discord.Snowflake, bool]

	sequence  *atomic.Int32
	sessionID *atomic.Pointer[string]

	conn gatewayConn
	dial func(ctx context.Context, websocketURL string) (gatewayConn, error)

	// Cancels the heartbeat goroutine of the current connection. Only
	// touched from the connect/listen goroutine.
	heartbeatCancel context.CancelFunc

	websocketRatelimit *limiter.DurationLimiter

	resumeGatewayURL *atomic.Pointer[string]

	ready chan struct{}
	stop  chan struct{}
	error chan error

	Status *atomic.Int32

	gatewayPayloadPool *sync.Pool

	Metadata *atomic.Pointer[ProducedMetadata]
}

func NewShard(client *Client, shardID int32) *Shard {
	shard := &Shard{
		Logger: client.Logger.With("shard_id", shardID),

		client: client,

		ShardID: shardID,

		retriesRemaining: &atomic.Int32{},
		StartedAt:        &atomic.Pointer[time.Time]{},
		InitializedAt:    &atomic.Pointer[time.Time]{},

		HeartbeatActive:   &atomic.Bool{},
		LastHeartbeatAck:  &atomic.Pointer[time.Time]{},
		LastHeartbeatSent: &atomic.Pointer[time.Time]{},
		GatewayLatency:    &atomic.Int64{},

		heartbeater:              nil,
		heartbeatInterval:        &atomic.Pointer[time.Duration]{},
		heartbeatFailureInterval: &atomic.Pointer[time.Duration]{},

		UnavailableGuilds: &syncmap.Map[discord.Snowflake, bool]{},
		LazyGuilds:        &syncmap.Map[discord.Snowflake, bool]{},
		Guilds:            &syncmap.Map[discord.Snowflake, bool]{},

		sequence:  &atomic.Int32{},
		sessionID: &atomic.Pointer[string]{},

		conn: nil,
		dial: dialGateway,

		// We have a ratelimit of 120 messages per minute we can send to the gateway.
		// We use less than 120/minute to account for heartbeating.
		websocketRatelimit: limiter.NewDurationLimiter("gateway_send", 110, time.Minute),

		resumeGatewayURL: &atomic.Pointer[string]{},

		ready: make(chan struct{}, 1),
		stop:  make(chan struct{}, 1),
		error: make(chan error, 1),

		Status: &atomic.Int32{},

		gatewayPayloadPool: &sync.Pool{
			New: func() any {
				return &discord.GatewayPayload{}
			},
		},

		Metadata: &atomic.Pointer[ProducedMetadata]{},
	}

	shard.retriesRemaining.Store(ShardConnectRetries)

	now := time.Now()
	shard.InitializedAt.Store(&now)

	shard.SetMetadata()

	return shard
}

func (shard *Shard) SetMetadata() {
	var userID discord.Snowflake

	if user := shard.client.User.Load(); user != nil {
		userID = user.ID
	}

	shard.Metadata.Store(&ProducedMetadata{
		Identifier: shard.client.Configuration.Identifier,
		UserID:     userID,
		Shard:      [2]int32{shard.ShardID, shard.client.ShardCount.Load()},
	})
}

func (shard *Shard) SetStatus(status ShardStatus) {
	UpdateShardStatus(shard.client.Configuration.Identifier, shard.ShardID, status)
	shard.Status.Store(int32(status))
	shard.Logger.Info("Shard status updated", "status", status.String())
}

func (shard *Shard) ConnectWithRetry(ctx context.Context) error {
	for {
		err := shard.Connect(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			newValue := shard.retriesRemaining.Add(-1)
			if newValue <= 0 {
				shard.SetStatus(ShardStatusFailed)

				return fmt.Errorf("%w: %w", ErrShardConnectFailed, err)
			}

			shard.Logger.Error("Failed to connect to shard", "error", err, "retries_remaining", newValue)
		} else if err == nil {
			break
		}
	}

	return nil
}

// Connect establishes the websocket connection, reads the hello frame
// and sends either an identify or a resume. A resume is attempted
// whenever a session id and sequence survive from the previous
// connection.
func (shard *Shard) Connect(ctx context.Context) error {
	shard.Logger.Debug("Shard is connecting")

	shard.SetStatus(ShardStatusConnecting)

	// Empties the ready channel.
readyConsumer:
	for {
		select {
		case <-shard.ready:
		default:
			break readyConsumer
		}
	}

	var err error

	defer func() {
		if err != nil {
			shard.stopHeartbeat()
			shard.closeWS(WebsocketReconnectCloseCode)
		}
	}()

	var websocketURL string

	resumeGatewayURL := shard.resumeGatewayURL.Load()
	if resumeGatewayURL == nil || *resumeGatewayURL == "" {
		websocketURL = gatewayURL.String()
	} else {
		websocketURL = *resumeGatewayURL
	}

	if shard.conn != nil {
		shard.closeWS(websocket.StatusNormalClosure)
	}

	// We need to append the v10 and encoding=json to the URL.
	websocketURL += "?v=10&encoding=json"

	shard.Logger.Debug("Dialing websocket", "url", websocketURL)

	conn, err := shard.dial(ctx, websocketURL)
	if err != nil {
		shard.Logger.Error("Failed to dial websocket", "error", err)

		return fmt.Errorf("failed to dial websocket: %w", err)
	}

	shard.conn = conn

	// Read the initial payload
	payload, err := shard.read(ctx, conn)
	if err != nil {
		shard.Logger.Error("Failed to read initial payload", "error", err)

		return fmt.Errorf("failed to read initial payload: %w", err)
	}

	var hello discord.Hello

	err = unmarshalPayload(payload, &hello)
	if err != nil {
		shard.Logger.Error("Failed to unmarshal hello", "error", err)

		return fmt.Errorf("failed to unmarshal hello: %w", err)
	}

	shard.gatewayPayloadPool.Put(payload)

	if hello.HeartbeatInterval <= 0 {
		err = ErrShardInvalidHeartbeatInterval

		return err
	}

	now := time.Now()
	shard.StartedAt.Store(&now)
	shard.LastHeartbeatAck.Store(&now)
	shard.LastHeartbeatSent.Store(&now)

	heartbeatInterval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
	shard.heartbeatInterval.Store(&heartbeatInterval)

	heartbeatFailureInterval := heartbeatInterval * time.Duration(ShardMaxHeartbeatFailures)
	shard.heartbeatFailureInterval.Store(&heartbeatFailureInterval)

	shard.Logger.Debug("Received hello", "heartbeat_interval", heartbeatInterval.Milliseconds())

	shard.stopHeartbeat()

	heartbeatCtx, heartbeatCancel := context.WithCancel(ctx)
	shard.heartbeatCancel = heartbeatCancel

	go shard.heartbeat(heartbeatCtx)

	sequence := shard.sequence.Load()
	sessionID := shard.sessionID.Load()

	if sequence == 0 || (sessionID == nil || *sessionID == "") {
		err = shard.identify(ctx)
		if err != nil {
			return fmt.Errorf("failed to identify: %w", err)
		}
	} else {
		err = shard.resume(ctx)
		if err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
	}

	shard.SetStatus(ShardStatusConnected)

	return nil
}

// Start runs the shard until the context is cancelled, Stop is called or
// an unrecoverable error occurs. Each pass connects, runs the read loop
// to completion and decides from its outcome whether the next attempt
// resumes or identifies from scratch.
func (shard *Shard) Start(ctx context.Context) error {
	shard.Logger.Debug("Shard is starting")

	for {
		err := shard.ConnectWithRetry(ctx)
		if err != nil {
			shard.error <- err

			return err
		}

		outcome, err := shard.Listen(ctx)

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch outcome {
		case outcomeNormalClose:
			return nil
		case outcomeResume:
			shard.Logger.Info("Shard will resume", "sequence", shard.sequence.Load())
		case outcomeReidentify:
			shard.Logger.Info("Shard will reidentify")

			shard.sessionID.Store(nil)
			shard.sequence.Store(0)
			shard.resumeGatewayURL.Store(nil)
		case outcomeFatal:
			shard.SetStatus(ShardStatusFailed)

			shard.error <- err

			return err
		}
	}
}

func (shard *Shard) Stop(code websocket.StatusCode) {
	shard.Logger.Debug("Shard is stopping")

	shard.SetStatus(ShardStatusStopping)

	select {
	case shard.stop <- struct{}{}:
	default:
	}

	shard.closeWS(code)

	shard.SetStatus(ShardStatusStopped)
}

// Listen is the read loop. It returns the reason it stopped; it never
// reconnects itself.
func (shard *Shard) Listen(ctx context.Context) (loopOutcome, error) {
	shard.Logger.Debug("Shard is listening")

	// The heartbeat goroutine must not outlive this connection's read
	// loop, or reconnects stack heartbeaters onto the shared ticker.
	defer shard.stopHeartbeat()

	conn := shard.conn

	for {
		msg, err := shard.read(ctx, conn)

		select {
		case <-shard.stop:
			return outcomeNormalClose, nil
		case <-ctx.Done():
			return outcomeNormalClose, nil
		default:
		}

		if err != nil {
			return shard.onReadError(err)
		}

		action, err := shard.OnEvent(ctx, msg, NewTrace().Set("receive", time.Now().UnixNano()))
		if err != nil {
			shard.Logger.Error("Failed to handle event", "error", err)
		}

		shard.gatewayPayloadPool.Put(msg)

		switch action {
		case actionContinue:
		case actionResume:
			shard.closeWS(WebsocketReconnectCloseCode)

			return outcomeResume, nil
		case actionReidentify:
			shard.closeWS(WebsocketReconnectCloseCode)

			return outcomeReidentify, nil
		case actionClose:
			shard.closeWS(websocket.StatusNormalClosure)

			return outcomeNormalClose, nil
		}
	}
}

// onReadError maps a failed read onto a loop outcome. Recoverable close
// codes and transport errors resume; authentication and sharding close
// codes are fatal.
func (shard *Shard) onReadError(err error) (loopOutcome, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return outcomeNormalClose, nil
	}

	var closeError websocket.CloseError

	if ok := errors.As(err, &closeError); ok {
		if !IsStatusCodeRecoverable(closeError.Code) {
			shard.Logger.Error("Shard received close event", "error", closeError)

			return outcomeFatal, fmt.Errorf("shard %d received close event: %w", shard.ShardID, closeError)
		}

		if closeError.Code == discord.CloseInvalidSeq || closeError.Code == discord.CloseSessionTimeout {
			return outcomeReidentify, nil
		}
	}

	shard.Logger.Error("Shard received error", "error", err)

	return outcomeResume, nil
}

func IsStatusCodeRecoverable(code websocket.StatusCode) bool {
	return code != discord.CloseNotAuthenticated &&
		code != discord.CloseAuthenticationFailed &&
		code != discord.CloseAlreadyAuthenticated &&
		code != discord.CloseInvalidShard &&
		code != discord.CloseShardingRequired &&
		code != discord.CloseInvalidAPIVersion &&
		code != discord.CloseInvalidIntents &&
		code != discord.CloseDisallowedIntents
}

func (shard *Shard) closeWS(code websocket.StatusCode) {
	shard.Logger.Debug("Shard is closing websocket", "code", code)

	if shard.conn == nil {
		return
	}

	err := shard.conn.Close(code, "")
	if err != nil && !errors.Is(err, net.ErrClosed) {
		shard.Logger.Debug("Failed to close websocket", "error", err)
	}
}

func (shard *Shard) WaitForReady() error {
	shard.Logger.Debug("Shard is waiting for ready")

	since := time.Now()
	ticker := time.NewTicker(time.Second * 15)

	defer ticker.Stop()

	for {
		select {
		case <-shard.ready:
			shard.SetStatus(ShardStatusReady)

			return nil
		case err := <-shard.error:
			return err
		case <-ticker.C:
			shard.Logger.Error("Shard not ready", "duration", time.Since(since))
		}
	}
}

func (shard *Shard) stopHeartbeat() {
	if shard.heartbeatCancel != nil {
		shard.heartbeatCancel()
		shard.heartbeatCancel = nil
	}
}

func (shard *Shard) heartbeat(ctx context.Context) {
	shard.Logger.Debug("Shard is heartbeating")

	shard.HeartbeatActive.Store(true)
	defer shard.HeartbeatActive.Store(false)

	// We will use a jitter to avoid the heartbeat interval from being the same for all shards.
	hasJitter := true
	heartbeatJitter := time.Millisecond * time.Duration(rand.Int63n(shard.heartbeatInterval.Load().Milliseconds()+1))

	if shard.heartbeater == nil {
		shard.heartbeater = time.NewTicker(heartbeatJitter)
	} else {
		shard.heartbeater.Reset(heartbeatJitter)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-shard.heartbeater.C:
			if hasJitter {
				hasJitter = false

				shard.heartbeater.Reset(*shard.heartbeatInterval.Load())
			}

			shard.Logger.Debug("Sending heartbeat", "sequence", shard.sequence.Load())

			err := shard.SendEvent(ctx, discord.GatewayOpHeartbeat, shard.sequence.Load())

			now := time.Now()
			shard.LastHeartbeatSent.Store(&now)

			if err != nil || now.Sub(*shard.LastHeartbeatAck.Load()) > *shard.heartbeatFailureInterval.Load() {
				if err != nil {
					shard.Logger.Error("Heartbeat failed", "error", err)
				} else {
					shard.Logger.Error("Heartbeat failed", "error", "timeout")
				}

				// Closing with a resumable code makes the read loop
				// surface a recoverable error, so the session resumes.
				shard.closeWS(WebsocketReconnectCloseCode)

				return
			}
		}
	}
}

func (shard *Shard) identify(ctx context.Context) error {
	configuration := shard.client.Configuration
	shardCount := shard.client.ShardCount.Load()

	shard.Logger.Debug("Shard is identifying", "shard_id", shard.ShardID, "shard_count", shardCount)

	err := shard.client.identifyProvider.Identify(ctx, shard)
	if err != nil {
		return fmt.Errorf("failed to wait for identify: %w", err)
	}

	largeThreshold := configuration.LargeThreshold
	if largeThreshold <= 0 {
		largeThreshold = GatewayLargeThreshold
	}

	return shard.SendEvent(ctx, discord.GatewayOpIdentify, discord.Identify{
		Properties: &discord.IdentifyProperties{
			OS:      runtime.GOOS,
			Browser: "Drift " + Version,
			Device:  "Drift " + Version,
		},
		Presence:       configuration.DefaultPresence,
		Token:          configuration.BotToken,
		Shard:          [2]int32{shard.ShardID, shardCount},
		LargeThreshold: largeThreshold,
		Intents:        int32(configuration.Intents),
		Compress:       true,
	})
}

func (shard *Shard) resume(ctx context.Context) error {
	shard.Logger.Debug("Shard is resuming")

	return shard.SendEvent(ctx, discord.GatewayOpResume, discord.Resume{
		Token:     shard.client.Configuration.BotToken,
		SessionID: *shard.sessionID.Load(),
		Sequence:  shard.sequence.Load(),
	})
}

// UpdatePresence sends a presence update over the gateway.
func (shard *Shard) UpdatePresence(ctx context.Context, status discord.UpdateStatus) error {
	return shard.SendEvent(ctx, discord.GatewayOpStatusUpdate, status)
}

// UpdateVoiceState joins, moves or leaves a voice channel. A nil channel
// id disconnects.
func (shard *Shard) UpdateVoiceState(ctx context.Context, voiceState discord.UpdateVoiceState) error {
	return shard.SendEvent(ctx, discord.GatewayOpVoiceStateUpdate, voiceState)
}

func (shard *Shard) SendEvent(ctx context.Context, gatewayOp discord.GatewayOp, data any) error {
	packet := discord.SentPayload{
		Op:   gatewayOp,
		Data: data,
	}

	return shard.send(ctx, gatewayOp, packet)
}

func (shard *Shard) send(ctx context.Context, gatewayOp discord.GatewayOp, data any) error {
	defer func() {
		if r := recover(); r != nil {
			if shard.client.panicHandler != nil {
				shard.client.panicHandler(shard.client, r)
			}
		}
	}()

	payload, err := driftjson.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	// We don't need to ratelimit heartbeats.
	if gatewayOp != discord.GatewayOpHeartbeat {
		shard.websocketRatelimit.Lock()
	}

	shard.Logger.Debug("Sending payload", "op", gatewayOp)

	err = shard.conn.Write(ctx, websocket.MessageText, payload)
	if err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	return nil
}

func (shard *Shard) read(ctx context.Context, conn gatewayConn) (*discord.GatewayPayload, error) {
	messageType, data, err := conn.Read(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}

		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	if messageType == websocket.MessageBinary {
		data, err = czlib.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress payload: %w", err)
		}
	}

	gatewayPayload := shard.gatewayPayloadPool.Get().(*discord.GatewayPayload)

	err = driftjson.Unmarshal(data, gatewayPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w (payload: %s)", err, string(data))
	}

	return gatewayPayload, nil
}

func (shard *Shard) OnEvent(ctx context.Context, msg *discord.GatewayPayload, trace *Trace) (loopAction, error) {
	if f, ok := gatewayEvents[msg.Op]; ok {
		return f(ctx, shard, msg, trace)
	}

	return actionContinue, nil
}

func (shard *Shard) OnDispatch(ctx context.Context, msg *discord.GatewayPayload, trace *Trace) error {
	defer func() {
		if r := recover(); r != nil {
			if shard.client.panicHandler != nil {
				shard.client.panicHandler(shard.client, r)
			}
		}
	}()

	shard.client.waiters.notify(msg)

	err := shard.client.eventProvider.Dispatch(ctx, shard, msg, trace)
	if err != nil {
		shard.Logger.Error("Failed to dispatch event", "error", err)
	}

	return nil
}
