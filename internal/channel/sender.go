package channel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/hubgateway/internal/domain"
)

const opSendMessage = "sendMessage"

// outbound describes how one adapter turns content into a provider call and
// reads the message id back out of the provider response.
type outbound struct {
	translate domain.ContentVisitor
	request   func(payload any) Request
	messageID func(body json.RawMessage) (string, error)
}

// sender is the behavior shared by every adapter: validation, translation,
// throttled retrying dispatch, result normalization and error
// classification.
type sender struct {
	channel domain.Channel
	api     *Transport
	retry   RetryPolicy
	limiter Limiter
	hooks   Hooks
	logger  *zap.Logger
	now     func() time.Time
}

func newSender(ch domain.Channel, s Settings) sender {
	snd := sender{
		channel: ch,
		api:     s.Transport,
		retry:   s.Retry,
		limiter: s.Limiter,
		hooks:   s.Hooks,
		logger:  s.Logger,
		now:     s.Now,
	}
	if snd.api == nil {
		snd.api = NewTransport("", "", 0, nil, s.Logger)
	}
	if snd.retry.MaxAttempts <= 0 {
		snd.retry = DefaultRetryPolicy()
	}
	if snd.limiter == nil {
		snd.limiter = noLimit{}
	}
	if snd.logger == nil {
		snd.logger = zap.NewNop()
	}
	snd.logger = snd.logger.With(zap.String("channel", string(ch)))
	if snd.now == nil {
		snd.now = time.Now
	}
	return snd
}

func (s *sender) Channel() domain.Channel { return s.channel }

func (s *sender) validate(from, to string, content domain.Content) error {
	switch {
	case from == "" || to == "":
		return domain.NewError(s.channel, opSendMessage, domain.ErrValidation, "from and to are required")
	case isNil(content):
		return domain.NewError(s.channel, opSendMessage, domain.ErrValidation, "content is required")
	case content.Type() == "":
		return domain.NewError(s.channel, opSendMessage, domain.ErrValidation, "content type is required")
	}
	return nil
}

// isNil also catches a nil pointer to a content variant.
func isNil(content domain.Content) bool {
	if content == nil {
		return true
	}
	v := reflect.ValueOf(content)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (s *sender) send(ctx context.Context, from, to string, content domain.Content, out outbound) (*domain.APIResponse[domain.Message], error) {
	start := s.now()

	if err := s.validate(from, to, content); err != nil {
		return nil, s.fail(err)
	}
	s.logger.Info("send message",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("content_type", string(content.Type())),
	)

	payload, err := domain.Visit(content, out.translate)
	if err != nil {
		return nil, s.fail(s.classify(ctx, opSendMessage, err))
	}

	var body json.RawMessage
	err = s.retry.Do(ctx,
		func(ctx context.Context, attempt int) error {
			if err := s.limiter.Wait(ctx, s.channel); err != nil {
				return &callError{kind: domain.ErrTimeout, message: "rate limit wait: " + err.Error(), err: err}
			}
			body = nil
			return s.api.Call(ctx, out.request(payload), &body)
		},
		func(attempt int, delay time.Duration, err error) {
			s.logger.Warn("attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if s.hooks.OnRetry != nil {
				s.hooks.OnRetry(s.channel)
			}
		},
	)
	if err != nil {
		return nil, s.fail(s.classify(ctx, opSendMessage, err))
	}

	id, err := out.messageID(body)
	if err != nil {
		return nil, s.fail(s.classify(ctx, opSendMessage, err))
	}

	ts := s.now()
	msg := domain.Message{
		ID:        id,
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: ts,
		Status:    domain.MessageStatus{ID: id, Status: domain.StatusSent, Timestamp: ts},
		Channel:   s.channel,
	}
	if s.hooks.OnSent != nil {
		s.hooks.OnSent(s.channel, ts.Sub(start))
	}
	s.logger.Info("message sent", zap.String("message_id", id))
	return domain.OK(msg), nil
}

// call performs a single non-retried exchange for the provider-specific
// management operations.
func (s *sender) call(ctx context.Context, op string, r Request, out any) error {
	if err := s.api.Call(ctx, r, out); err != nil {
		err = s.classify(ctx, op, err)
		s.logger.Error("operation failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

func (s *sender) fail(err error) error {
	s.logger.Error("send failed", zap.Error(err))
	if s.hooks.OnFailed != nil {
		s.hooks.OnFailed(s.channel, domain.ErrorCode(err))
	}
	return err
}

func (s *sender) classify(ctx context.Context, op string, err error) error {
	return Classify(ctx, s.channel, op, err)
}

// Classify attributes a raw transport failure to a channel and operation.
// An empty channel attributes it to the gateway itself. Errors that already
// are *domain.Error pass through unchanged.
func Classify(ctx context.Context, ch domain.Channel, op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.Error{Channel: ch, Op: op, Kind: domain.ErrTimeout, Message: err.Error(), Err: err}
	}

	var ce *callError
	if errors.As(err, &ce) {
		return &domain.Error{
			Channel:    ch,
			Op:         op,
			Kind:       ce.kind,
			StatusCode: ce.status,
			Message:    ce.message,
			Err:        ce.err,
		}
	}
	return &domain.Error{Channel: ch, Op: op, Kind: domain.ErrRequest, Message: err.Error(), Err: err}
}

// missingID is returned when a 2xx provider response lacks a message id.
func missingID(field string) error {
	return &callError{kind: domain.ErrProvider, status: http.StatusOK, message: "response missing " + field}
}

// mediaKind maps a MIME type onto the four media kinds providers accept.
func mediaKind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image"):
		return "image"
	case strings.HasPrefix(mimeType, "video"):
		return "video"
	case strings.HasPrefix(mimeType, "audio"):
		return "audio"
	}
	return "document"
}
