package drift

import (
	"strconv"

	"github.com/driftchat/drift/discord"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EventMetrics tracks event-related metrics
var EventMetrics = struct {
	EventsTotal    *prometheus.CounterVec
	GatewayLatency *prometheus.GaugeVec
}{
	EventsTotal: promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drift_events_total",
			Help: "Total number of events processed, split by identifier and event type",
		},
		[]string{"identifier", "event_type", "guild_id"},
	),
	GatewayLatency: promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drift_gateway_latency_seconds",
			Help: "Gateway latency in seconds, measured by heartbeat",
		},
		[]string{"identifier"},
	),
}

func RecordEvent(identifier, eventType string) {
	EventMetrics.EventsTotal.WithLabelValues(identifier, eventType, "").Inc()
}

func RecordEventWithGuildID(identifier, eventType string, guildID discord.Snowflake) {
	EventMetrics.EventsTotal.WithLabelValues(identifier, eventType, guildID.String()).Inc()
}

func UpdateGatewayLatency(identifier string, latency float64) {
	EventMetrics.GatewayLatency.WithLabelValues(identifier).Set(latency)
}

// ShardMetrics tracks shard-related metrics
var ShardMetrics = struct {
	ClientStatus *prometheus.GaugeVec
	ShardStatus  *prometheus.GaugeVec
}{
	ClientStatus: promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drift_client_status",
			Help: "Status of the client",
		},
		[]string{"identifier"},
	),
	ShardStatus: promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drift_shard_status",
			Help: "Status of the shard",
		},
		[]string{"identifier", "shard_id"},
	),
}

func UpdateClientStatus(identifier string, status ClientStatus) {
	ShardMetrics.ClientStatus.WithLabelValues(identifier).Set(float64(status))
}

func UpdateShardStatus(identifier string, shardID int32, status ShardStatus) {
	ShardMetrics.ShardStatus.WithLabelValues(identifier, strconv.Itoa(int(shardID))).Set(float64(status))
}

// StateMetrics tracks state-related metrics
var StateMetrics = struct {
	Guilds            prometheus.Gauge
	GuildMembers      prometheus.Gauge
	Channels          prometheus.Gauge
	Users             prometheus.Gauge
	Messages          prometheus.Gauge
	VoiceStates       prometheus.Gauge
	UnavailableGuilds prometheus.Gauge
}{
	Guilds: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_guilds",
			Help: "Total number of guilds in state",
		},
	),
	GuildMembers: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_guild_members",
			Help: "Total number of guild members in state",
		},
	),
	Channels: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_channels",
			Help: "Total number of channels in state",
		},
	),
	Users: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_users",
			Help: "Total number of users in state",
		},
	),
	Messages: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_messages",
			Help: "Total number of messages in the message ring",
		},
	),
	VoiceStates: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_state_voice_states",
			Help: "Total number of voice states in state",
		},
	),
	UnavailableGuilds: promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drift_unavailable_guilds",
			Help: "Number of currently unavailable guilds",
		},
	),
}

func UpdateUnavailableGuilds(count float64) {
	StateMetrics.UnavailableGuilds.Set(count)
}
