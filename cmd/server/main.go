// Command server запускает HTTP сервис пользователей.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/InQaaaaGit/usersvc.git/internal/app"
	"github.com/InQaaaaGit/usersvc.git/internal/buildinfo"
	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"github.com/InQaaaaGit/usersvc.git/internal/server"
	"go.uber.org/zap"
)

// Задаются при сборке:
// go build -ldflags "-X main.buildVersion=v1.0.0 -X main.buildDate=$(date +%F) -X main.buildCommit=$(git rev-parse --short HEAD)"
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	if err := build.Fprint(os.Stdout); err != nil {
		log.Printf("Ошибка вывода информации о сборке: %v", err)
	}

	// Инициализация конфигурации
	cfg := server.InitConfig(nil)

	// Инициализация логгера
	logger, cleanup, err := server.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg, logger, build); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		cleanup()
		log.Fatal(err)
	}
}

// run запускает сервер и блокируется до отмены ctx или ошибки сервера
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, build *buildinfo.Info) error {
	logger.Info("Starting application", build.Fields()...)

	application, err := app.NewApp(cfg, logger, build)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Error closing application", zap.Error(err))
		}
	}()

	srv := server.NewHTTPServer(application.GetServer(), cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), <-errCh)
}
