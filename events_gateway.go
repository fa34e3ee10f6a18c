package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
)

// GatewayHandler handles a single gateway opcode. The returned action
// tells the read loop what to do next; handlers never reconnect
// themselves.
type GatewayHandler func(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, trace *Trace) (loopAction, error)

var gatewayEvents = make(map[discord.GatewayOp]GatewayHandler)

func RegisterGatewayEvent(eventType discord.GatewayOp, handler GatewayHandler) {
	gatewayEvents[eventType] = handler
}

func gatewayOpDispatch(ctx context.Context, shard *Shard, msg *discord.GatewayPayload, trace *Trace) (loopAction, error) {
	shard.sequence.Store(msg.Sequence)

	trace.Set("dispatch", time.Now().UnixNano())

	return actionContinue, shard.OnDispatch(ctx, msg, trace)
}

func gatewayOpHeartbeat(ctx context.Context, shard *Shard, _ *discord.GatewayPayload, _ *Trace) (loopAction, error) {
	err := shard.SendEvent(ctx, discord.GatewayOpHeartbeat, shard.sequence.Load())
	if err != nil {
		return actionResume, fmt.Errorf("failed to answer heartbeat request: %w", err)
	}

	return actionContinue, nil
}

func gatewayOpReconnect(_ context.Context, shard *Shard, _ *discord.GatewayPayload, _ *Trace) (loopAction, error) {
	shard.Logger.Debug("Shard has been requested to reconnect")

	return actionResume, nil
}

func gatewayOpInvalidSession(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (loopAction, error) {
	var resumable bool

	err := driftjson.Unmarshal(msg.Data, &resumable)
	if err != nil {
		return actionReidentify, fmt.Errorf("failed to unmarshal invalid session: %w", err)
	}

	shard.Logger.Warn("Shard has received an invalid session", "resumable", resumable)

	if !resumable {
		return actionReidentify, nil
	}

	return actionResume, nil
}

func gatewayOpHello(_ context.Context, shard *Shard, msg *discord.GatewayPayload, _ *Trace) (loopAction, error) {
	var hello discord.Hello

	err := driftjson.Unmarshal(msg.Data, &hello)
	if err != nil {
		return actionContinue, fmt.Errorf("failed to unmarshal hello: %w", err)
	}

	if hello.HeartbeatInterval <= 0 {
		return actionContinue, ErrShardInvalidHeartbeatInterval
	}

	now := time.Now()
	shard.LastHeartbeatSent.Store(&now)
	shard.LastHeartbeatAck.Store(&now)

	heartbeatInterval := time.Duration(hello.HeartbeatInterval) * time.Millisecond
	shard.heartbeatInterval.Store(&heartbeatInterval)

	heartbeatFailureInterval := heartbeatInterval * time.Duration(ShardMaxHeartbeatFailures)
	shard.heartbeatFailureInterval.Store(&heartbeatFailureInterval)

	if shard.heartbeater != nil {
		shard.heartbeater.Reset(heartbeatInterval)
	}

	return actionContinue, nil
}

func gatewayOpHeartbeatAck(_ context.Context, shard *Shard, _ *discord.GatewayPayload, _ *Trace) (loopAction, error) {
	now := time.Now()
	shard.LastHeartbeatAck.Store(&now)

	if lastHeartbeatSent := shard.LastHeartbeatSent.Load(); lastHeartbeatSent != nil {
		latency := now.Sub(*lastHeartbeatSent)

		shard.GatewayLatency.Store(latency.Milliseconds())

		UpdateGatewayLatency(
			shard.client.Configuration.Identifier,
			latency.Seconds(),
		)
	}

	return actionContinue, nil
}

func init() {
	RegisterGatewayEvent(discord.GatewayOpDispatch, gatewayOpDispatch)
	RegisterGatewayEvent(discord.GatewayOpHeartbeat, gatewayOpHeartbeat)
	RegisterGatewayEvent(discord.GatewayOpReconnect, gatewayOpReconnect)
	RegisterGatewayEvent(discord.GatewayOpInvalidSession, gatewayOpInvalidSession)
	RegisterGatewayEvent(discord.GatewayOpHello, gatewayOpHello)
	RegisterGatewayEvent(discord.GatewayOpHeartbeatACK, gatewayOpHeartbeatAck)
}
