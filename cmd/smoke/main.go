// Command smoke проверяет запущенный сервис: correlation id генерируется
// для запроса без заголовка и возвращается без изменений для запроса с заголовком.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/client"
	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	baseURL := flag.String("b", "http://localhost:8080", "Адрес сервиса")
	header := flag.String("correlation-header", correlation.DefaultHeader, "Заголовок correlation id")
	timeout := flag.Duration("t", 30*time.Second, "Общий таймаут проверки")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	c, err := client.New(*baseURL, client.WithHeader(*header))
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	err = run(ctx, c, logger)
	cancel()
	c.CloseIdleConnections()
	_ = logger.Sync()
	if err != nil {
		log.Fatalf("Smoke test failed: %v", err)
	}
}

// run выполняет сценарий проверки
func run(ctx context.Context, c *client.Client, logger *zap.Logger) error {
	// Без correlation id сервис должен сгенерировать UUID
	ping, err := client.GetJSON[models.PingResponse](ctx, c, "/ping")
	if err != nil {
		return fmt.Errorf("ping without id: %w", err)
	}
	if _, err := uuid.Parse(ping.CorrelationID); err != nil {
		return fmt.Errorf("generated id %q is not a UUID: %w", ping.CorrelationID, err)
	}
	if ping.Value.CorrelationID != ping.CorrelationID {
		return fmt.Errorf("body id %q differs from header id %q", ping.Value.CorrelationID, ping.CorrelationID)
	}
	logger.Info("Generated correlation id echoed", zap.String(correlation.LogField, ping.CorrelationID))

	// С заданным id сервис должен вернуть его без изменений
	id, err := correlation.Generate()
	if err != nil {
		return err
	}
	ctx = correlation.WithID(ctx, correlation.ID{Value: "smoke-" + id.Value, Source: correlation.SourceGenerated})
	want := correlation.ValueFromContext(ctx)

	ping, err = client.GetJSON[models.PingResponse](ctx, c, "/ping")
	if err != nil {
		return fmt.Errorf("ping with id: %w", err)
	}
	if err := expectEcho(want, ping.CorrelationID); err != nil {
		return err
	}

	created, err := client.PostJSON[models.User](ctx, c, "/api/users", models.CreateUserRequest{
		Name:  "Smoke Test",
		Email: id.Value + "@smoke.test",
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if err := expectEcho(want, created.CorrelationID); err != nil {
		return err
	}

	fetched, err := client.GetJSON[models.User](ctx, c, "/api/users/"+created.Value.ID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if err := expectEcho(want, fetched.CorrelationID); err != nil {
		return err
	}
	if fetched.Value.Email != created.Value.Email {
		return fmt.Errorf("fetched user email %q, want %q", fetched.Value.Email, created.Value.Email)
	}

	correlation.Logger(ctx, logger).Info("Smoke test passed", zap.String("user_id", created.Value.ID))
	return nil
}

func expectEcho(want, got string) error {
	if got != want {
		return fmt.Errorf("correlation id not echoed: sent %q, got %q", want, got)
	}
	return nil
}
