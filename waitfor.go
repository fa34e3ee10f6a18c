package drift

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/driftchat/drift/discord"
)

// waitfor.go lets callers block until a matching dispatch event arrives.

type eventWaiter struct {
	eventType string
	check     func(payload discord.GatewayPayload) bool
	result    chan discord.GatewayPayload
}

type waiterRegistry struct {
	mu      sync.Mutex
	nextID  atomic.Int64
	waiters map[int64]*eventWaiter
}

func newWaiterRegistry() *waiterRegistry {
	return &waiterRegistry{
		waiters: make(map[int64]*eventWaiter),
	}
}

func (r *waiterRegistry) add(w *eventWaiter) int64 {
	id := r.nextID.Add(1)

	r.mu.Lock()
	r.waiters[id] = w
	r.mu.Unlock()

	return id
}

func (r *waiterRegistry) remove(id int64) {
	r.mu.Lock()
	delete(r.waiters, id)
	r.mu.Unlock()
}

// notify delivers the payload to every waiter matching it. Matched
// waiters are removed; each waiter fires at most once.
func (r *waiterRegistry) notify(msg *discord.GatewayPayload) {
	r.mu.Lock()

	var matched []*eventWaiter

	for id, w := range r.waiters {
		if w.eventType != msg.Type {
			continue
		}

		payload := copyPayload(msg)

		if w.check != nil && !w.check(payload) {
			continue
		}

		matched = append(matched, w)
		delete(r.waiters, id)
	}

	r.mu.Unlock()

	for _, w := range matched {
		select {
		case w.result <- copyPayload(msg):
		default:
		}
	}
}

// copyPayload detaches the payload from the pooled buffer it was read
// into.
func copyPayload(msg *discord.GatewayPayload) discord.GatewayPayload {
	payload := *msg

	if msg.Data != nil {
		payload.Data = append(payload.Data[:0:0], msg.Data...)
	}

	return payload
}

// WaitFor blocks until a dispatch event of the given type satisfying
// check arrives, or the context expires. A nil check matches the first
// event of the type. Cancellation returns ErrWaitForTimeout so absence
// is an explicit result, not a panic.
func (client *Client) WaitFor(ctx context.Context, eventType string, check func(payload discord.GatewayPayload) bool) (discord.GatewayPayload, error) {
	w := &eventWaiter{
		eventType: eventType,
		check:     check,
		result:    make(chan discord.GatewayPayload, 1),
	}

	id := client.waiters.add(w)
	defer client.waiters.remove(id)

	select {
	case payload := <-w.result:
		return payload, nil
	case <-ctx.Done():
		return discord.GatewayPayload{}, ErrWaitForTimeout
	}
}
