package notify

import (
	"context"
	"sync"

	"github.com/ricirt/hubgateway/internal/domain"
)

// MockPublisher records notifications in memory for tests.
type MockPublisher struct {
	mu   sync.Mutex
	sent []domain.Notification

	// PublishErr, when set, is returned instead of recording.
	PublishErr error
}

func (m *MockPublisher) Publish(_ context.Context, n domain.Notification) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) Sent() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.sent...)
}
