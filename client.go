package drift

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/driftchat/drift/discord"
	"github.com/driftchat/drift/pkg/syncmap"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Version = "0.1.0"

// Client owns the shards, the session state cache and the provider
// boundary. One client maps to one bot token.
type Client struct {
	Logger *slog.Logger

	Configuration *Configuration

	User *atomic.Pointer[discord.User]

	ShardCount *atomic.Int32
	Shards     *syncmap.Map[int32, *Shard]

	Session *discord.Session

	guildChunks *syncmap.Map[discord.Snowflake, *GuildChunk]

	waiters *waiterRegistry

	stateProvider    StateProvider
	eventProvider    EventProvider
	identifyProvider IdentifyProvider
	producerProvider ProducerProvider
	producer         Producer

	panicHandler func(client *Client, r any)

	Status *atomic.Int32

	started *atomic.Bool
}

type ClientOption func(client *Client)

func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = logger
	}
}

func WithStateProvider(provider StateProvider) ClientOption {
	return func(client *Client) {
		client.stateProvider = provider
	}
}

func WithEventProvider(provider EventProvider) ClientOption {
	return func(client *Client) {
		client.eventProvider = provider
	}
}

func WithIdentifyProvider(provider IdentifyProvider) ClientOption {
	return func(client *Client) {
		client.identifyProvider = provider
	}
}

func WithProducerProvider(provider ProducerProvider) ClientOption {
	return func(client *Client) {
		client.producerProvider = provider
	}
}

func WithPanicHandler(handler func(client *Client, r any)) ClientOption {
	return func(client *Client) {
		client.panicHandler = handler
	}
}

func WithRESTInterface(restInterface discord.RESTInterface) ClientOption {
	return func(client *Client) {
		client.Session.Interface = restInterface
	}
}

func NewClient(ctx context.Context, configuration *Configuration, options ...ClientOption) (*Client, error) {
	if configuration == nil || configuration.BotToken == "" {
		return nil, ErrClientMissingToken
	}

	client := &Client{
		Logger: slog.Default(),

		Configuration: configuration,

		User: &atomic.Pointer[discord.User]{},

		ShardCount: &atomic.Int32{},
		Shards:     &syncmap.Map[int32, *Shard]{},

		guildChunks: &syncmap.Map[discord.Snowflake, *GuildChunk]{},

		waiters: newWaiterRegistry(),

		Status: &atomic.Int32{},

		started: &atomic.Bool{},
	}

	client.Session = discord.NewSession(ctx, "Bot "+configuration.BotToken, discord.NewBaseInterface())

	for _, option := range options {
		option(client)
	}

	if client.stateProvider == nil {
		client.stateProvider = NewStateProviderMemoryWithCacheSize(configuration.MessageCacheSize)
	}

	if client.eventProvider == nil {
		client.eventProvider = NewEventProviderWithBlacklist(NewBuiltinDispatchProvider(true))
	}

	if client.identifyProvider == nil {
		client.identifyProvider = NewIdentifyViaDurationLimiter(1)
	}

	if client.producerProvider == nil {
		client.producerProvider = NewChannelProducer(1024)
	}

	return client, nil
}

// State returns the client's session state cache.
func (client *Client) State() StateProvider {
	return client.stateProvider
}

func (client *Client) SetUser(user *discord.User) {
	client.User.Store(user)
}

func (client *Client) SetStatus(status ClientStatus) {
	UpdateClientStatus(client.Configuration.Identifier, status)
	client.Status.Store(int32(status))
	client.Logger.Info("Client status updated", "status", status.String())
}

// Initialize resolves the shard layout and builds the shards. Under
// auto sharding the recommended shard count comes from the gateway.
func (client *Client) Initialize(ctx context.Context) error {
	client.SetStatus(ClientStatusStarting)

	shardCount := client.Configuration.ShardCount
	identifyConcurrency := int32(1)

	if client.Configuration.AutoSharded || shardCount <= 0 {
		gatewayBot, err := discord.GetGatewayBot(client.Session)
		if err != nil {
			return fmt.Errorf("failed to get gateway bot: %w", err)
		}

		shardCount = gatewayBot.Shards
		identifyConcurrency = gatewayBot.SessionStartLimit.MaxConcurrency

		client.Logger.Info("Using recommended shard count",
			"shard_count", shardCount,
			"session_start_remaining", gatewayBot.SessionStartLimit.Remaining)
	}

	if shardCount <= 0 {
		shardCount = 1
	}

	client.ShardCount.Store(shardCount)

	if identifyConcurrency > 1 {
		client.identifyProvider = NewIdentifyViaDurationLimiter(identifyConcurrency)
	}

	var err error

	client.producer, err = client.producerProvider.GetProducer(ctx, client.Configuration.Identifier)
	if err != nil {
		return fmt.Errorf("failed to get producer: %w", err)
	}

	shardIDs := make([]int32, 0, shardCount)

	if client.Configuration.ShardIDs != "" {
		shardIDs = returnRangeInt32(client.Configuration.ShardIDs, shardCount)
	} else {
		for shardID := int32(0); shardID < shardCount; shardID++ {
			shardIDs = append(shardIDs, shardID)
		}
	}

	if len(shardIDs) == 0 {
		return ErrClientMissingShards
	}

	for _, shardID := range shardIDs {
		client.Shards.Store(shardID, NewShard(client, shardID))
	}

	return nil
}

// Start initializes and runs every shard. It returns once all shards
// have begun connecting; use WaitForReady to block until the initial
// state is loaded.
func (client *Client) Start(ctx context.Context) error {
	if !client.started.CompareAndSwap(false, true) {
		return ErrClientAlreadyStarted
	}

	err := client.Initialize(ctx)
	if err != nil {
		client.SetStatus(ClientStatusFailed)

		return err
	}

	if client.Configuration.PrometheusAddress != "" {
		go client.serveMetrics()
	}

	client.SetStatus(ClientStatusConnecting)

	client.Shards.Range(func(_ int32, shard *Shard) bool {
		go func(shard *Shard) {
			err := shard.Start(ctx)
			if err != nil {
				client.Logger.Error("Shard exited with error", "shard_id", shard.ShardID, "error", err)
			}
		}(shard)

		return true
	})

	client.SetStatus(ClientStatusConnected)

	return nil
}

func (client *Client) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              client.Configuration.PrometheusAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	client.Logger.Info("Serving metrics", "address", client.Configuration.PrometheusAddress)

	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		client.Logger.Error("Failed to serve metrics", "error", err)
	}
}

// WaitForReady blocks until every shard has received its ready signal.
func (client *Client) WaitForReady() error {
	var waitErr error

	client.Shards.Range(func(_ int32, shard *Shard) bool {
		err := shard.WaitForReady()
		if err != nil {
			waitErr = err

			return false
		}

		return true
	})

	if waitErr != nil {
		return waitErr
	}

	client.SetStatus(ClientStatusReady)

	return nil
}

// Stop shuts down every shard and closes the producer.
func (client *Client) Stop() {
	client.SetStatus(ClientStatusStopping)

	client.Shards.Range(func(_ int32, shard *Shard) bool {
		shard.Stop(websocket.StatusNormalClosure)

		return true
	})

	if client.producer != nil {
		err := client.producer.Close()
		if err != nil {
			client.Logger.Error("Failed to close producer", "error", err)
		}
	}

	client.SetStatus(ClientStatusStopped)

	client.started.Store(false)
}

// Shard returns the shard responsible for a guild, following the
// standard shard formula.
func (client *Client) Shard(guildID discord.Snowflake) (*Shard, bool) {
	shardCount := client.ShardCount.Load()
	if shardCount <= 0 {
		return nil, false
	}

	shardID := int32((int64(guildID) >> 22) % int64(shardCount))

	return client.Shards.Load(shardID)
}
