package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ricirt/hubgateway/internal/domain"
)

// ChannelLimiters holds one token bucket per provider channel so a burst on
// one provider never consumes another provider's allowance.
// Burst equals the rate: no saved-up capacity above the per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.Channel]*rate.Limiter
}

// New creates limiters allowing ratePerSec outbound calls per second per
// channel. A non-positive rate disables throttling.
func New(ratePerSec int) *ChannelLimiters {
	r, burst := rate.Limit(ratePerSec), ratePerSec
	if ratePerSec <= 0 {
		r, burst = rate.Inf, 0
	}

	limiters := make(map[domain.Channel]*rate.Limiter, len(domain.Channels()))
	for _, ch := range domain.Channels() {
		limiters[ch] = rate.NewLimiter(r, burst)
	}
	return &ChannelLimiters{limiters: limiters}
}

// Wait blocks until the channel's limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.Channel) error {
	l, ok := cl.limiters[ch]
	if !ok {
		return nil
	}
	return l.Wait(ctx)
}
