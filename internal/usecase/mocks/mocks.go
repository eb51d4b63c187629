package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/bankdash/internal/domain"
)

// FakeGateway is a hand-written Gateway that records every intent.
type FakeGateway struct {
	mu      sync.Mutex
	intents []domain.TransactionIntent

	ModeValue  domain.GatewayMode
	SubmitFunc func(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error)
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{ModeValue: domain.GatewayModeSimulation}
}

func (m *FakeGateway) Submit(ctx context.Context, intent domain.TransactionIntent) (*domain.CommitReceipt, error) {
	m.mu.Lock()
	m.intents = append(m.intents, intent)
	count := len(m.intents)
	m.mu.Unlock()

	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, intent)
	}

	return &domain.CommitReceipt{
		TransactionID: fmt.Sprintf("fake-%d", count),
		Kind:          intent.Kind,
		Amount:        intent.Amount,
		Description:   intent.Description,
		Timestamp:     time.Now().UTC(),
		Status:        domain.TransactionStatusCompleted,
		Simulated:     true,
	}, nil
}

func (m *FakeGateway) Mode() domain.GatewayMode {
	return m.ModeValue
}

// Intents returns a copy of the submitted intents.
func (m *FakeGateway) Intents() []domain.TransactionIntent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TransactionIntent(nil), m.intents...)
}

// RecordingNotifier is a Notifier that keeps every event.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (m *RecordingNotifier) Notify(_ context.Context, event domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Events returns a copy of the recorded events.
func (m *RecordingNotifier) Events() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Event(nil), m.events...)
}

// OfType returns the recorded events of type t.
func (m *RecordingNotifier) OfType(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Reset drops the recorded events.
func (m *RecordingNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// MemoryIdempotencyStore is an in-memory IdempotencyStore.
type MemoryIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MemoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MemoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

func (m *MemoryIdempotencyStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
