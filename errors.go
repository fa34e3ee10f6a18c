package drift

import "errors"

var (
	ErrClientMissingToken   = errors.New("client missing bot token")
	ErrClientMissingShards  = errors.New("client missing shards")
	ErrClientAlreadyStarted = errors.New("client already started")

	ErrShardConnectFailed            = errors.New("shard connect failed")
	ErrShardInvalidHeartbeatInterval = errors.New("shard invalid heartbeat interval")
	ErrShardStopping                 = errors.New("shard stopping")

	ErrNoGatewayHandler  = errors.New("no gateway handler found")
	ErrNoDispatchHandler = errors.New("no dispatch handler found")

	ErrNoMoreMessages = errors.New("no more messages")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrChunkingTimeout = errors.New("timed out waiting for member chunks")

	ErrWaitForTimeout = errors.New("timed out waiting for event")
)
