package storage

import (
	"context"

	"github.com/InQaaaaGit/usersvc.git/internal/models"
)

// UserStorage интерфейс хранилища пользователей
type UserStorage interface {
	// Save сохраняет пользователя. Занятый email возвращает ErrEmailConflict.
	Save(ctx context.Context, user models.User) error

	// Get получает пользователя по ID
	Get(ctx context.Context, id string) (models.User, error)

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (models.User, error)

	// List возвращает всех пользователей в порядке создания
	List(ctx context.Context) ([]models.User, error)

	// Close освобождает ресурсы хранилища
	Close() error
}

// DatabaseChecker интерфейс для проверки соединения с хранилищем
type DatabaseChecker interface {
	// CheckConnection проверяет соединение с хранилищем
	CheckConnection(ctx context.Context) error
}
