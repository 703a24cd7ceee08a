package channel

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
)

// Adapter is the uniform send contract every provider channel implements.
type Adapter interface {
	Channel() domain.Channel
	SendMessage(ctx context.Context, from, to string, content domain.Content) (*domain.APIResponse[domain.Message], error)
}

// Limiter throttles outbound calls per channel. *ratelimiter.ChannelLimiters
// satisfies it.
type Limiter interface {
	Wait(ctx context.Context, ch domain.Channel) error
}

// Hooks observe send outcomes. Nil funcs are skipped.
type Hooks struct {
	OnSent   func(ch domain.Channel, latency time.Duration)
	OnFailed func(ch domain.Channel, kind string)
	OnRetry  func(ch domain.Channel)
}

// Settings are the collaborators shared by all adapters of one client.
// Transport is required; everything else has a usable zero value.
type Settings struct {
	Transport *Transport
	Retry     RetryPolicy
	Limiter   Limiter
	Hooks     Hooks
	Logger    *zap.Logger
	Now       func() time.Time
}

type noLimit struct{}

func (noLimit) Wait(context.Context, domain.Channel) error { return nil }
