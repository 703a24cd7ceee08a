package domain

import "time"

// MessageRecord is what the dispatch flow hands to the persistence
// collaborator after a successful send.
type MessageRecord struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	TicketID     string    `json:"ticket_id"`
	ContactID    string    `json:"contact_id"`
	Channel      Channel   `json:"channel"`
	Body         string    `json:"body"`
	FromMe       bool      `json:"from_me"`
	FileName     string    `json:"file_name,omitempty"`
	MediaType    string    `json:"media_type,omitempty"`
	OriginalName string    `json:"original_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TicketUpdate carries the ticket fields touched after an outbound message.
type TicketUpdate struct {
	LastMessage string
	Answered    bool
}

// Notification types published to the realtime collaborator.
const (
	NotifyTicketUpdate   = "ticket:update"
	NotifyMessageInbound = "message:inbound"
	NotifyMessageStatus  = "message:status"
)

// Notification is one realtime event for a tenant.
type Notification struct {
	TenantID  string    `json:"tenant_id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
