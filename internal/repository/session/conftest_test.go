package session

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/merchstudio/internal/db"
)

const testPrefix = "merchstudio:"

// mockStore implements the consumer interface for tests. Without overrides it behaves as an
// in-memory key-value store.
type mockStore struct {
	data map[string][]byte
	ttls map[string]time.Duration

	getFn        func(ctx context.Context, key string) ([]byte, error)
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	expireFn     func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func newTestRepo(t *testing.T, ttl time.Duration) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
	return New(ms, testPrefix, ttl), ms
}
