// Command dbcheck проверяет доступность PostgreSQL из DATABASE_DSN (или -d).
// Код выхода 0 означает успешную проверку, 1 ошибку или отсутствие DSN.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/server"
	"github.com/InQaaaaGit/usersvc.git/internal/storage"
	"go.uber.org/zap"
)

const checkTimeout = 5 * time.Second

var errNoDSN = errors.New("database dsn is not configured")

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("Database check failed: %v", err)
	}
}

// run читает конфигурацию и выполняет проверку; логгер закрывается до выхода
func run(ctx context.Context) error {
	cfg := server.InitConfig(nil)

	logger, cleanup, err := server.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer cleanup()

	return check(ctx, cfg.DatabaseDSN, logger)
}

// check открывает соединение, выполняет ping и SELECT 1
func check(ctx context.Context, dsn string, logger *zap.Logger) error {
	if dsn == "" {
		return errNoDSN
	}

	id, err := correlation.Generate()
	if err != nil {
		return err
	}
	ctx = correlation.WithID(ctx, id)
	logger = correlation.Logger(ctx, logger)

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	db, err := storage.OpenDB(ctx, dsn)
	if err != nil {
		logger.Error("Database is unreachable", zap.Error(err))
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}
	}()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		logger.Error("Probe query failed", zap.Error(err))
		return fmt.Errorf("probe query: %w", err)
	}
	if one != 1 {
		return fmt.Errorf("probe query returned %d", one)
	}

	logger.Info("Database is reachable", zap.Duration("latency", time.Since(start)))
	return nil
}
