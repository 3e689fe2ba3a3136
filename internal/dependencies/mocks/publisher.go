package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/dicegame/internal/model"
)

// MockPublisher records published events and can be made to fail
type MockPublisher struct {
	mu     sync.Mutex
	events []model.Event
	Err    error
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event, then returns Err
func (m *MockPublisher) Publish(_ context.Context, event model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns a copy of the events published so far
func (m *MockPublisher) Events() []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Event{}, m.events...)
}

// Reset clears recorded events
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	m.Err = nil
}
