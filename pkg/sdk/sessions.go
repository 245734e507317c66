package merchstudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// memSessions keeps editing sessions in process memory.
type memSessions struct {
	mu   sync.RWMutex
	data map[string]domsession.Session
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[string]domsession.Session)}
}

func (m *memSessions) Save(_ context.Context, s domsession.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID()] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (domsession.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[id]
	if !ok {
		return domsession.Session{}, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	delete(m.data, id)
	return nil
}

// Ping always succeeds; memory is the session store.
func (m *memSessions) Ping(context.Context) error { return nil }

func (m *memSessions) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.data)
}
