package drift

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftchat/drift/discord"
)

type ProducedPayload struct {
	discord.GatewayPayload

	Extra    *Extra           `json:"__extra,omitempty"`
	Metadata ProducedMetadata `json:"__metadata"`
	Trace    Trace            `json:"__trace"`
}

// UnmarshalData decodes the payload's dispatch data into out.
func (p ProducedPayload) UnmarshalData(out any) error {
	return unmarshalPayload(&p.GatewayPayload, out)
}

type ProducedMetadata struct {
	Identifier string            `json:"i"`
	UserID     discord.Snowflake `json:"id"`
	Shard      [2]int32          `json:"s"`
}

type EventProvider interface {
	Dispatch(ctx context.Context, shard *Shard, event *discord.GatewayPayload, trace *Trace) error
}

// EventProviderWithBlacklist is an event provider that will not handle events that are in the blacklist
// and not publish events that are in the produce blacklist.

type EventProviderWithBlacklist struct {
	dispatchProvider EventDispatchProvider
}

func NewEventProviderWithBlacklist(dispatchProvider EventDispatchProvider) *EventProviderWithBlacklist {
	return &EventProviderWithBlacklist{
		dispatchProvider: dispatchProvider,
	}
}

func (p *EventProviderWithBlacklist) Dispatch(ctx context.Context, shard *Shard, event *discord.GatewayPayload, trace *Trace) error {
	configuration := shard.client.Configuration

	for _, blacklistedEvent := range configuration.EventBlacklist {
		if blacklistedEvent == event.Type {
			return nil
		}
	}

	result, continuable, err := p.dispatchProvider.Dispatch(ctx, shard, event, trace)
	if err != nil {
		if !errors.Is(err, ErrNoDispatchHandler) {
			return fmt.Errorf("failed to dispatch event: %w", err)
		}
	}

	if !continuable {
		return nil
	}

	for _, blacklistedEvent := range configuration.ProduceBlacklist {
		if blacklistedEvent == event.Type {
			return nil
		}
	}

	packet := ProducedPayload{
		GatewayPayload: *event,
		Extra:          result.Extra,
		Metadata:       *shard.Metadata.Load(),
		Trace:          *trace,
	}

	packet.Trace.Set("publish", time.Now().UnixNano())

	err = shard.client.producer.Publish(ctx, shard, packet)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
