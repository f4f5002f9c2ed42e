package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/lib/pq" // Используем pq для проверки ошибки
	"go.uber.org/zap"
)

// pgUniqueViolation код ошибки нарушения уникальности
const pgUniqueViolation = "23505"

const createUsersTableSQL = `CREATE TABLE IF NOT EXISTS users (` +
	`id UUID PRIMARY KEY,` +
	`name VARCHAR(100) NOT NULL,` +
	`email VARCHAR(254) NOT NULL UNIQUE,` +
	`created_at TIMESTAMPTZ NOT NULL DEFAULT now()` +
	`)`

// PostgresStorage реализует UserStorage с использованием PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenDB открывает пул соединений и проверяет его через Ping
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(fmt.Errorf("database connection check error: %w", err), closeErr)
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}
	return db, nil
}

// NewPostgresStorage создает новый экземпляр PostgresStorage
func NewPostgresStorage(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := OpenDB(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, createUsersTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after table creation error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("table creation error: %w", err)
	}

	return &PostgresStorage{db: db, logger: logger}, nil
}

// Save сохраняет пользователя в PostgreSQL
func (ps *PostgresStorage) Save(ctx context.Context, user models.User) error {
	_, err := ps.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, created_at) VALUES ($1, $2, $3, $4)",
		user.ID, user.Name, user.Email, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrEmailConflict
		}
		correlation.Logger(ctx, ps.logger).Error("Insert user failed", zap.Error(err))
		return fmt.Errorf("save user error: %w", err)
	}
	return nil
}

// Get получает пользователя по ID
func (ps *PostgresStorage) Get(ctx context.Context, id string) (models.User, error) {
	return ps.queryOne(ctx, "SELECT id, name, email, created_at FROM users WHERE id = $1", id)
}

// GetByEmail получает пользователя по email
func (ps *PostgresStorage) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return ps.queryOne(ctx, "SELECT id, name, email, created_at FROM users WHERE email = $1", email)
}

func (ps *PostgresStorage) queryOne(ctx context.Context, query, arg string) (models.User, error) {
	var u models.User
	err := ps.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		var pqErr *pq.Error
		// невалидный UUID в запросе означает, что такого пользователя нет
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "invalid_text_representation" {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user error: %w", err)
	}
	return u, nil
}

// List возвращает пользователей в порядке создания
func (ps *PostgresStorage) List(ctx context.Context) ([]models.User, error) {
	rows, err := ps.db.QueryContext(ctx, "SELECT id, name, email, created_at FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list users error: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users error: %w", err)
	}
	return users, nil
}

// CheckConnection проверяет соединение с базой данных
func (ps *PostgresStorage) CheckConnection(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

// Close закрывает соединение с базой данных
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}
