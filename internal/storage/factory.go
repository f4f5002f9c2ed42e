package storage

import (
	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"go.uber.org/zap"
)

// New выбирает хранилище по конфигурации: PostgreSQL, если задан DSN,
// файл, если задан путь, иначе память.
func New(cfg *config.Config, logger *zap.Logger) (UserStorage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		logger.Info("Using PostgreSQL storage")
		return NewPostgresStorage(cfg.DatabaseDSN, logger)
	case cfg.FileStoragePath != "":
		logger.Info("Using file storage", zap.String("path", cfg.FileStoragePath))
		return NewFileStorage(cfg.FileStoragePath, logger)
	default:
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(logger), nil
	}
}
