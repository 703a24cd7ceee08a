package repository

import (
	"context"
	"sync"

	"github.com/ricirt/hubgateway/internal/domain"
)

// MockMessageRepository is a hand-written, in-memory implementation of
// MessageRepository used in unit tests.
type MockMessageRepository struct {
	mu       sync.RWMutex
	messages []domain.MessageRecord
	tickets  map[string]domain.TicketUpdate

	// Optional error overrides, set in tests to simulate failure paths.
	CreateErr error
	UpdateErr error
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{tickets: make(map[string]domain.TicketUpdate)}
}

func (m *MockMessageRepository) CreateMessage(_ context.Context, rec *domain.MessageRecord) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *rec)
	return nil
}

func (m *MockMessageRepository) UpdateTicket(_ context.Context, ticketID string, u domain.TicketUpdate) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticketID] = u
	return nil
}

// Messages returns a copy of every recorded message in insertion order.
func (m *MockMessageRepository) Messages() []domain.MessageRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.MessageRecord(nil), m.messages...)
}

// Ticket returns the last update applied to ticketID.
func (m *MockMessageRepository) Ticket(ticketID string) (domain.TicketUpdate, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.tickets[ticketID]
	return u, ok
}
