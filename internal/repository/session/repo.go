package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/merchstudio/internal/db"
	"github.com/kailas-cloud/merchstudio/internal/domain"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// store is the consumer interface for sessions (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
}

// Repo implements usecase/studio.SessionRepository.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a session repository. Keys live under prefix; a zero ttl keeps sessions forever.
func New(s store, prefix string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, ttl: ttl}
}

// Save writes the session and restarts its TTL.
func (r *Repo) Save(ctx context.Context, s domsession.Session) error {
	data, err := json.Marshal(toRow(s))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(s.ID()), data, r.ttl); err != nil {
		return fmt.Errorf("set session %s: %w", s.ID(), err)
	}
	return nil
}

// Get loads a session and slides its TTL.
func (r *Repo) Get(ctx context.Context, id string) (domsession.Session, error) {
	key := r.key(id)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domsession.Session{}, domain.ErrSessionNotFound
		}
		return domsession.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}

	var row sessionRow
	if err := json.Unmarshal(data, &row); err != nil {
		return domsession.Session{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	if r.ttl > 0 {
		if err := r.store.Expire(ctx, key, r.ttl, false); err != nil {
			return domsession.Session{}, fmt.Errorf("touch session %s: %w", id, err)
		}
	}
	return row.toDomain(), nil
}

// Delete removes a session.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check session %s: %w", id, err)
	}
	if !exists {
		return domain.ErrSessionNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del session %s: %w", id, err)
	}
	return nil
}

// Key pattern: {prefix}session:{id}
func (r *Repo) key(id string) string {
	return r.prefix + "session:" + id
}
