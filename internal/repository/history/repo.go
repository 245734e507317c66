package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
)

// store is the consumer interface for rule history (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
}

// Repo implements usecase/studio.HistoryRepository.
// One hash per rule; fields are zero-padded unix-nano timestamps so they sort lexically.
type Repo struct {
	store  store
	prefix string
	limit  int
}

// New creates a history repository keeping at most limit entries per rule (0 = unlimited).
func New(s store, prefix string, limit int) *Repo {
	return &Repo{store: s, prefix: prefix, limit: limit}
}

type entryRow struct {
	Op   string     `json:"op"`
	At   int64      `json:"at"`
	Rule *rule.Rule `json:"rule,omitempty"`
}

// Append records an entry and drops the oldest ones beyond the limit.
func (r *Repo) Append(ctx context.Context, index, ruleID string, e domhistory.Entry) error {
	data, err := json.Marshal(entryRow{Op: string(e.Op), At: e.At.UnixMilli(), Rule: e.Rule})
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	key := r.key(index, ruleID)
	if err := r.store.HSet(ctx, key, map[string]string{field(e.At): string(data)}); err != nil {
		return fmt.Errorf("hset history %s: %w", ruleID, err)
	}
	if r.limit <= 0 {
		return nil
	}

	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("hgetall history %s: %w", ruleID, err)
	}
	if len(m) <= r.limit {
		return nil
	}
	fields := sortedFields(m)
	if err := r.store.HDel(ctx, key, fields[:len(fields)-r.limit]...); err != nil {
		return fmt.Errorf("trim history %s: %w", ruleID, err)
	}
	return nil
}

// List returns up to limit entries, newest first (0 = all).
func (r *Repo) List(ctx context.Context, index, ruleID string, limit int) ([]domhistory.Entry, error) {
	m, err := r.store.HGetAll(ctx, r.key(index, ruleID))
	if err != nil {
		return nil, fmt.Errorf("hgetall history %s: %w", ruleID, err)
	}

	fields := sortedFields(m)
	out := make([]domhistory.Entry, 0, len(fields))
	for i := len(fields) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		var row entryRow
		if err := json.Unmarshal([]byte(m[fields[i]]), &row); err != nil {
			return nil, fmt.Errorf("unmarshal history %s/%s: %w", ruleID, fields[i], err)
		}
		out = append(out, domhistory.Entry{
			Op:   domhistory.Op(row.Op),
			At:   time.UnixMilli(row.At).UTC(),
			Rule: row.Rule,
		})
	}
	return out, nil
}

// Key pattern: {prefix}history:{index}:{ruleID}
func (r *Repo) key(index, ruleID string) string {
	return r.prefix + "history:" + index + ":" + ruleID
}

func field(at time.Time) string {
	return fmt.Sprintf("%020d", at.UnixNano())
}

func sortedFields(m map[string]string) []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
