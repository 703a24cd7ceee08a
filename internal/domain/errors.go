package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every failure surfaced by an adapter or the gateway
// client is an *Error whose Kind is one of these, so callers branch with
// errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUnsupportedContent = errors.New("unsupported content")
	ErrTransport          = errors.New("no response received")
	ErrRequest            = errors.New("request not sent")
	ErrProvider           = errors.New("provider rejected request")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrSignature          = errors.New("invalid webhook signature")

	ErrChannelNotSupported = errors.New("channel not supported")
	ErrTokenNotFound       = errors.New("hub token not found")
	ErrTicketNotFound      = errors.New("ticket not found")
)

// Error carries the channel and operation a failure happened in together
// with its kind. StatusCode is set only for ErrProvider.
type Error struct {
	Channel    Channel
	Op         string
	Kind       error
	StatusCode int
	Message    string
	Err        error
}

func NewError(ch Channel, op string, kind error, msg string) *Error {
	return &Error{Channel: ch, Op: op, Kind: kind, Message: msg}
}

func (e *Error) Error() string {
	src := string(e.Channel)
	if src == "" {
		src = "gateway"
	}
	switch e.Kind {
	case ErrProvider:
		return fmt.Sprintf("%s API error (%s): %s", src, e.Op, e.Message)
	case ErrTransport:
		if e.Message != "" {
			return fmt.Sprintf("%s API: no response received in %s: %s", src, e.Op, e.Message)
		}
		return fmt.Sprintf("%s API: no response received in %s", src, e.Op)
	default:
		return fmt.Sprintf("%s (%s): %s", src, e.Op, e.Message)
	}
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ChannelNotSupportedError is returned when a caller selects a channel the
// client has not registered.
type ChannelNotSupportedError struct {
	Name  string
	Known []Channel
}

func (e *ChannelNotSupportedError) Error() string {
	names := make([]string, len(e.Known))
	for i, c := range e.Known {
		names[i] = string(c)
	}
	return fmt.Sprintf("channel '%s' not supported. Available channels: %s", e.Name, strings.Join(names, ", "))
}

func (e *ChannelNotSupportedError) Is(target error) bool {
	return target == ErrChannelNotSupported
}

// ErrorCode maps an error onto a stable machine-readable code used in
// APIResponse.Code and metric labels.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnsupportedContent):
		return "unsupported_content"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrRequest):
		return "request"
	case errors.Is(err, ErrProvider):
		return "provider"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrSignature):
		return "signature"
	case errors.Is(err, ErrChannelNotSupported):
		return "channel_not_supported"
	case errors.Is(err, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, ErrTicketNotFound):
		return "ticket_not_found"
	}
	return "unknown"
}

// Unsupported builds the error adapters return for content they cannot carry.
func Unsupported(ch Channel, op string, t ContentType) *Error {
	return NewError(ch, op, ErrUnsupportedContent, fmt.Sprintf("content type '%s' not supported by channel %s", t, ch))
}
