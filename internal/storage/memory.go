package storage

import (
	"context"
	"sync"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"go.uber.org/zap"
)

// MemoryStorage реализует UserStorage с использованием памяти
type MemoryStorage struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string // email -> id
	order   []string
	logger  *zap.Logger
}

// NewMemoryStorage создает новый экземпляр MemoryStorage
func NewMemoryStorage(logger *zap.Logger) *MemoryStorage {
	return &MemoryStorage{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		logger:  logger,
	}
}

// Save сохраняет пользователя в памяти
func (ms *MemoryStorage) Save(ctx context.Context, user models.User) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if existingID, ok := ms.byEmail[user.Email]; ok && existingID != user.ID {
		return ErrEmailConflict
	}
	if prev, exists := ms.users[user.ID]; exists {
		delete(ms.byEmail, prev.Email)
	} else {
		ms.order = append(ms.order, user.ID)
	}
	ms.users[user.ID] = user
	ms.byEmail[user.Email] = user.ID

	correlation.Logger(ctx, ms.logger).Debug("User saved in memory", zap.String("user_id", user.ID))
	return nil
}

// Get получает пользователя по ID
func (ms *MemoryStorage) Get(ctx context.Context, id string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	user, ok := ms.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// GetByEmail получает пользователя по email
func (ms *MemoryStorage) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	id, ok := ms.byEmail[email]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return ms.users[id], nil
}

// List возвращает пользователей в порядке добавления
func (ms *MemoryStorage) List(ctx context.Context) ([]models.User, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	users := make([]models.User, 0, len(ms.order))
	for _, id := range ms.order {
		users = append(users, ms.users[id])
	}
	return users, nil
}

// CheckConnection для памяти всегда успешна
func (ms *MemoryStorage) CheckConnection(ctx context.Context) error {
	return ctx.Err()
}

// Close ничего не делает для хранилища в памяти
func (ms *MemoryStorage) Close() error {
	return nil
}
