package drift

import "context"

type ProducerProvider interface {
	GetProducer(ctx context.Context, identifier string) (Producer, error)
}

type Producer interface {
	Publish(ctx context.Context, shard *Shard, payload ProducedPayload) error
	Close() error
}

// ChannelProducer delivers produced payloads to an in-process channel.
// Slow consumers drop payloads rather than stalling the read loop.
type ChannelProducer struct {
	payloads chan ProducedPayload
}

func NewChannelProducer(buffer int) *ChannelProducer {
	return &ChannelProducer{
		payloads: make(chan ProducedPayload, buffer),
	}
}

func (p *ChannelProducer) GetProducer(_ context.Context, _ string) (Producer, error) {
	return p, nil
}

func (p *ChannelProducer) Payloads() <-chan ProducedPayload {
	return p.payloads
}

func (p *ChannelProducer) Publish(_ context.Context, shard *Shard, payload ProducedPayload) error {
	select {
	case p.payloads <- payload:
	default:
		shard.Logger.Warn("Dropping produced payload, consumer is not keeping up", "type", payload.Type)
	}

	return nil
}

func (p *ChannelProducer) Close() error {
	return nil
}
