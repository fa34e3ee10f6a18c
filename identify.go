package drift

import (
	"context"
	"time"

	"github.com/driftchat/drift/pkg/limiter"
)

var (
	StandardIdentifyLimit = 5 * time.Second
	IdentifyRateLimit     = StandardIdentifyLimit + (time.Millisecond * 500)
)

// IdentifyProvider gates identify payloads. The gateway allows one
// identify per bucket per five seconds; sharded clients must take a
// ticket before identifying.
type IdentifyProvider interface {
	Identify(ctx context.Context, shard *Shard) error
}

// IdentifyViaDurationLimiter is the builtin identify provider, gating
// identifies through a duration limiter shared by all shards of the
// client.
type IdentifyViaDurationLimiter struct {
	limiter *limiter.DurationLimiter
}

func NewIdentifyViaDurationLimiter(concurrency int32) *IdentifyViaDurationLimiter {
	if concurrency <= 0 {
		concurrency = 1
	}

	return &IdentifyViaDurationLimiter{
		limiter: limiter.NewDurationLimiter("identify", concurrency, IdentifyRateLimit),
	}
}

func (p *IdentifyViaDurationLimiter) Identify(_ context.Context, _ *Shard) error {
	p.limiter.Lock()

	return nil
}
