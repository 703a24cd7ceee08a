package ratelimiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/ratelimiter"
)

func TestChannelLimiters_UnlimitedNeverBlocks(t *testing.T) {
	l := ratelimiter.New(0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 1000; i++ {
		if err := l.Wait(ctx, domain.ChannelWhatsApp); err != nil {
			t.Fatalf("unexpected error at %d: %v", i, err)
		}
	}
}

// TestChannelLimiters_PerChannelBuckets verifies that draining one channel's
// bucket does not throttle another channel.
func TestChannelLimiters_PerChannelBuckets(t *testing.T) {
	l := ratelimiter.New(1)

	if err := l.Wait(context.Background(), domain.ChannelFacebook); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, domain.ChannelTelegram); err != nil {
		t.Fatalf("telegram should have its own token: %v", err)
	}
	if err := l.Wait(ctx, domain.ChannelFacebook); err == nil {
		t.Fatal("expected facebook to be throttled within the deadline")
	}
}

func TestChannelLimiters_UnknownChannelPassesThrough(t *testing.T) {
	l := ratelimiter.New(1)
	if err := l.Wait(context.Background(), domain.Channel("sms")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
