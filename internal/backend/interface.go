package backend

import (
	"context"
	"time"

	"cleverspend/internal/services"
	"cleverspend/internal/storage"
)

// CleanupFunc releases what a backend opened.
type CleanupFunc func() error

// BackendResult holds the store, the optional change notifier, and their
// combined cleanup.
type BackendResult struct {
	Store storage.Store
	// Notifier is nil when notifications are disabled or unavailable.
	Notifier services.Notifier
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// Location is the calendar for period boundaries.
	Location *time.Location

	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
