package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"officescheduler/models"
)

// Store persists sessions between requests and holds the per-session
// submit-in-flight flag.
type Store interface {
	Get(ctx context.Context, id string) (*models.ScheduleSession, error)
	Save(ctx context.Context, s *models.ScheduleSession) error
	Delete(ctx context.Context, id string) error
	// AcquireSubmit sets the flag and reports false if it was already set.
	AcquireSubmit(ctx context.Context, id string) (bool, error)
	ReleaseSubmit(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process. Values are stored as JSON so callers
// never share slices with the store.
type MemoryStore struct {
	mu         sync.Mutex
	sessions   map[string][]byte
	updated    map[string]time.Time
	submitting map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:   make(map[string][]byte),
		updated:    make(map[string]time.Time),
		submitting: make(map[string]bool),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.ScheduleSession, error) {
	m.mu.Lock()
	data, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s models.ScheduleSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.ScheduleSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	m.updated[s.ID] = s.UpdatedAt
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	delete(m.updated, id)
	delete(m.submitting, id)
	return nil
}

func (m *MemoryStore) AcquireSubmit(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting[id] {
		return false, nil
	}
	m.submitting[id] = true
	return true, nil
}

func (m *MemoryStore) ReleaseSubmit(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.submitting, id)
	return nil
}

// Sweep drops sessions not updated since cutoff, skipping any with a
// submission in flight. It returns how many were removed.
func (m *MemoryStore) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, at := range m.updated {
		if at.Before(cutoff) && !m.submitting[id] {
			delete(m.sessions, id)
			delete(m.updated, id)
			n++
		}
	}
	return n
}

// Len reports how many sessions are held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
