package backend

import (
	"fmt"
	"log/slog"

	"contribot/internal/config"
	"contribot/internal/storage"
	"contribot/internal/storage/memory"
)

// Factory builds the Record Store selected by DATA_BACKEND.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(cfg *config.Config) (*BackendResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}
	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, storage.WithLocation(cfg.Location()))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
	case MemoryBackend:
		f.logger.Warn("Initialized memory backend; records are lost on restart")
		return &BackendResult{Store: memory.New(cfg.Location())}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
