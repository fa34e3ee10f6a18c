package drift

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/driftjson"
)

type Configuration struct {
	// Identifier is passed through to produced payload metadata so
	// consumers can route events from multiple clients.
	Identifier string `json:"identifier"`

	BotToken string `json:"bot_token"`

	Intents discord.GatewayIntent `json:"intents"`

	DefaultPresence *discord.UpdateStatus `json:"default_presence,omitempty"`

	// Guilds above LargeThreshold members only deliver online members
	// on GUILD_CREATE; the rest arrive through member chunking.
	LargeThreshold int32 `json:"large_threshold,omitempty"`

	ChunkGuildsOnStart bool `json:"chunk_guilds_on_start,omitempty"`

	AutoSharded bool   `json:"auto_sharded,omitempty"`
	ShardCount  int32  `json:"shard_count,omitempty"`
	ShardIDs    string `json:"shard_ids,omitempty"`

	// MessageCacheSize bounds the per-client message ring. Zero uses
	// the default.
	MessageCacheSize int `json:"message_cache_size,omitempty"`

	// Events that the client should not handle.
	EventBlacklist []string `json:"event_blacklist,omitempty"`
	// Events that the client should handle, but will not be produced.
	ProduceBlacklist []string `json:"produce_blacklist,omitempty"`

	// PrometheusAddress enables the metrics endpoint when set.
	PrometheusAddress string `json:"prometheus_address,omitempty"`
}

type ConfigProvider interface {
	GetConfig(ctx context.Context) (*Configuration, error)
	SaveConfig(ctx context.Context, config *Configuration) error
}

// ConfigProviderFromPath is a basic config provider that reads and writes to a file.

type ConfigProviderFromPath struct {
	path string
}

func NewConfigProviderFromPath(path string) ConfigProviderFromPath {
	return ConfigProviderFromPath{path}
}

func (c ConfigProviderFromPath) GetConfig(_ context.Context) (*Configuration, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Configuration
	if err := driftjson.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	slog.Info("Loaded config", "path", c.path)

	return &config, nil
}

func (c ConfigProviderFromPath) SaveConfig(_ context.Context, config *Configuration) error {
	data, err := driftjson.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(c.path, data, 0o600)
}

// ConfigProviderFromEnv reads configuration from environment variables,
// pairing with godotenv for local development.

type ConfigProviderFromEnv struct{}

func NewConfigProviderFromEnv() ConfigProviderFromEnv {
	return ConfigProviderFromEnv{}
}

func (c ConfigProviderFromEnv) GetConfig(_ context.Context) (*Configuration, error) {
	config := &Configuration{
		Identifier: os.Getenv("DRIFT_IDENTIFIER"),
		BotToken:   os.Getenv("DRIFT_BOT_TOKEN"),
	}

	if intents, err := strconv.ParseInt(os.Getenv("DRIFT_INTENTS"), 10, 32); err == nil {
		config.Intents = discord.GatewayIntent(intents)
	}

	if shardCount, err := strconv.ParseInt(os.Getenv("DRIFT_SHARD_COUNT"), 10, 32); err == nil {
		config.ShardCount = int32(shardCount)
	} else {
		config.AutoSharded = true
	}

	config.PrometheusAddress = os.Getenv("DRIFT_PROMETHEUS_ADDRESS")

	return config, nil
}

func (c ConfigProviderFromEnv) SaveConfig(_ context.Context, _ *Configuration) error {
	return nil
}
