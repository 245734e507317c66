// Package history describes the audit trail kept for merchandising rules.
package history

import (
	"time"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
)

// Op is a recorded rule operation.
type Op string

// Recorded operations.
const (
	OpSave   Op = "save"
	OpDelete Op = "delete"
)

// Entry is one recorded operation. Rule is set for saves only.
type Entry struct {
	Op   Op
	At   time.Time
	Rule *rule.Rule
}

// Saved records a successful save of r.
func Saved(r rule.Rule, at time.Time) Entry {
	return Entry{Op: OpSave, At: at, Rule: &r}
}

// Deleted records a successful delete.
func Deleted(at time.Time) Entry {
	return Entry{Op: OpDelete, At: at}
}
