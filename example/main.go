package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	drift "github.com/driftchat/drift"
	"github.com/driftchat/drift/discord"
	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config, err := drift.NewConfigProviderFromEnv().GetConfig(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	producer := drift.NewChannelProducer(1024)

	client, err := drift.NewClient(ctx, config,
		drift.WithLogger(slog.Default()),
		drift.WithProducerProvider(producer),
		drift.WithPanicHandler(func(_ *drift.Client, r any) {
			slog.Error("Panic occurred", "error", r)
			println(string(debug.Stack()))
		}),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create client: %w", err))
	}

	go func() {
		for payload := range producer.Payloads() {
			switch payload.Type {
			case discord.EventMessageCreate:
				var message discord.MessageCreate

				err := payload.UnmarshalData(&message)
				if err != nil {
					slog.Error("Failed to unmarshal message", "error", err)

					continue
				}

				slog.Info("Message received",
					"channel_id", message.ChannelID,
					"author_id", message.Author.ID,
					"content", message.Content)
			default:
				slog.Debug("Event received", "type", payload.Type)
			}
		}
	}()

	err = client.Start(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to start client: %w", err))
	}

	err = client.WaitForReady()
	if err != nil {
		panic(fmt.Errorf("failed to wait for ready: %w", err))
	}

	slog.Info("Client is ready")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	client.Stop()
	cancel()
}
