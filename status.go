package drift

type ClientStatus int

const (
	ClientStatusIdle ClientStatus = iota
	ClientStatusFailed
	ClientStatusStarting
	ClientStatusConnecting
	ClientStatusConnected
	ClientStatusReady
	ClientStatusStopping
	ClientStatusStopped
)

func (status ClientStatus) String() string {
	return []string{
		"Idle",
		"Failed",
		"Starting",
		"Connecting",
		"Connected",
		"Ready",
		"Stopping",
		"Stopped",
	}[status]
}

type ShardStatus int

const (
	ShardStatusIdle ShardStatus = iota
	ShardStatusFailed
	ShardStatusConnecting
	ShardStatusConnected
	ShardStatusReady
	ShardStatusStopping
	ShardStatusStopped
)

func (status ShardStatus) String() string {
	return []string{
		"Idle",
		"Failed",
		"Connecting",
		"Connected",
		"Ready",
		"Stopping",
		"Stopped",
	}[status]
}
