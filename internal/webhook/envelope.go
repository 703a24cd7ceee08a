package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ricirt/hubgateway/internal/domain"
)

var jsonNull = json.RawMessage("null")

// envelope is the outer shape shared by every provider delivery.
type envelope struct {
	Object string          `json:"object"`
	Entry  json.RawMessage `json:"entry"`
}

type change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

type messagingSender struct {
	Sender *struct {
		Platform string `json:"platform"`
	} `json:"sender"`
}

// errMalformedEntry marks an entry whose shape was recognized but whose
// contents could not be read.
type errMalformedEntry struct {
	index int
	err   error
}

func (e *errMalformedEntry) Error() string {
	return fmt.Sprintf("entry %d: %v", e.index, e.err)
}

func (e *errMalformedEntry) Unwrap() error { return e.err }

// normalize turns one raw delivery into canonical events, in entry order.
// Envelope problems are validation errors; a recognized but malformed entry
// is an *errMalformedEntry. No events are returned unless every entry
// normalizes.
func normalize(body []byte, now func() time.Time) ([]domain.WebhookEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.NewError("", "webhook", domain.ErrValidation, "body is not a JSON object")
	}
	if env.Object == "" || isAbsent(env.Entry) {
		return nil, domain.NewError("", "webhook", domain.ErrValidation, "object and entry are required")
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(env.Entry, &entries); err != nil {
		return nil, domain.NewError("", "webhook", domain.ErrValidation, "entry must be an array")
	}

	var events []domain.WebhookEvent
	emit := func(kind domain.EventKind, ch domain.Channel, data json.RawMessage) {
		if isAbsent(data) {
			data = jsonNull
		}
		events = append(events, domain.WebhookEvent{Event: kind, Data: data, Channel: ch, Timestamp: now()})
	}

	for i, raw := range entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}

		switch {
		case !isAbsent(fields["changes"]):
			var changes []json.RawMessage
			if err := json.Unmarshal(fields["changes"], &changes); err != nil {
				return nil, &errMalformedEntry{index: i, err: err}
			}
			for _, rc := range changes {
				var c change
				if err := json.Unmarshal(rc, &c); err != nil {
					return nil, &errMalformedEntry{index: i, err: err}
				}
				switch c.Field {
				case "messages":
					emit(domain.EventMessage, domain.ChannelWhatsApp, c.Value)
				case "message_status":
					emit(domain.EventMessageStatus, domain.ChannelWhatsApp, c.Value)
				}
			}

		case !isAbsent(fields["messaging"]):
			var items []json.RawMessage
			if err := json.Unmarshal(fields["messaging"], &items); err != nil {
				return nil, &errMalformedEntry{index: i, err: err}
			}
			for _, item := range items {
				var m messagingSender
				if err := json.Unmarshal(item, &m); err != nil {
					return nil, &errMalformedEntry{index: i, err: err}
				}
				ch := domain.ChannelFacebook
				if env.Object == "instagram" || (m.Sender != nil && m.Sender.Platform == "instagram") {
					ch = domain.ChannelInstagram
				}
				emit(domain.EventMessage, ch, item)
			}

		case !isAbsent(fields["message"]):
			emit(domain.EventMessage, domain.ChannelTelegram, raw)
		}
	}
	return events, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}
