package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (jsonl)
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Transfer outcomes. Schema-stable strings; they end up on disk.
const (
	OutcomeCompleted = "completed"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// TransferRecord is one finished transfer, as reported by the core.
// Keep it compact and schema-stable.
type TransferRecord struct {
	At      time.Time `json:"at"`
	TaskID  string    `json:"task_id"`
	Outcome string    `json:"outcome"`

	// Detail depends on Outcome: destination path for completed transfers,
	// the reason or error message otherwise.
	Detail string `json:"detail,omitempty"`
}

// Store is the minimal persistence API used by the history service.
type Store interface {
	AppendTransfer(ctx context.Context, rec TransferRecord) error

	// RecentTransfers returns up to limit records, newest last.
	RecentTransfers(ctx context.Context, limit int) ([]TransferRecord, error)

	// PruneTransfers removes records older than the cutoff and reports how
	// many were dropped.
	PruneTransfers(ctx context.Context, olderThan time.Time) (int, error)

	Close() error
}
