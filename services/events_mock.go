package services

import (
	"context"
	"sync"
)

// MockEventPublisher records published events for testing
type MockEventPublisher struct {
	mu     sync.Mutex
	events []TransactionEvent
	// Err, when set, is returned by Publish after recording the event
	Err error
}

// NewMockEventPublisher creates a new mock publisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

func (m *MockEventPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (m *MockEventPublisher) Events() []TransactionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TransactionEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Reset clears recorded events
func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
