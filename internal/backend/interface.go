package backend

import (
	"context"

	"contribot/internal/core"
)

// Store is the Record Store contract both implementations satisfy.
type Store interface {
	Insert(ctx context.Context, c core.Contribution) (core.Contribution, error)
	InsertAll(ctx context.Context, cs []core.Contribution) ([]core.Contribution, error)
	All(ctx context.Context) ([]core.Contribution, error)
	ByUser(ctx context.Context, userID int64) ([]core.Contribution, error)
	Get(ctx context.Context, id int64) (core.Contribution, error)
	MonthlySummary(ctx context.Context, year int, month core.Month) (core.MonthlySummary, error)
	Ping(ctx context.Context) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store instance and optional cleanup function
type BackendResult struct {
	Store   Store
	Cleanup CleanupFunc
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
