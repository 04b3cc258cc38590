package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cleverspend/internal/amqp"
	"cleverspend/internal/services"
	"cleverspend/internal/storage"
	"cleverspend/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dialTimeout bounds the initial broker connection.
	dialTimeout time.Duration
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger:      logger,
		dialTimeout: 10 * time.Second,
	}
}

// CreateBackend opens the configured store and, when AMQP is configured,
// the change notifier. A broker that cannot be reached is logged and
// skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore(config)
	default:
		err = fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	notifier := f.createNotifier(ctx, config)
	if notifier != nil {
		result.Notifier = notifier
	}

	result.Cleanup = func() error {
		var errs []error
		if notifier != nil {
			if err := notifier.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
		return errors.Join(errs...)
	}

	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (storage.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, storage.WithLocation(config.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"timezone", config.Location.String())
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) storage.Store {
	f.logger.Warn("Initialized memory backend, data will not survive a restart",
		"timezone", config.Location.String())
	return memory.New().WithLocation(config.Location)
}

func (f *DefaultFactory) createNotifier(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, f.dialTimeout)
	defer cancel()

	client, err := amqp.NewClient(dialCtx, config.AMQPURL, config.AMQPExchange, config.AMQPRoutingKey)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", "error", err)
		return nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"routing_key", config.AMQPRoutingKey)
	return client
}

var _ services.Notifier = (*amqp.Client)(nil)
