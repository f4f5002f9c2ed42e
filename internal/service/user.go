// Package service содержит бизнес-логику работы с пользователями.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/InQaaaaGit/usersvc.git/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidUser оборачивает ошибки валидации запроса на создание пользователя
var ErrInvalidUser = errors.New("invalid user")

// UserService определяет интерфейс сервиса пользователей
type UserService interface {
	CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CheckConnection(ctx context.Context) error
}

// UserServiceImpl реализует UserService поверх storage.UserStorage
type UserServiceImpl struct {
	storage storage.UserStorage
	logger  *zap.Logger
	now     func() time.Time
	newID   func() (uuid.UUID, error)
}

// NewUserService создает новый экземпляр UserServiceImpl
func NewUserService(st storage.UserStorage, logger *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		storage: st,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewRandom,
	}
}

// CreateUser нормализует и проверяет запрос, затем сохраняет пользователя
func (s *UserServiceImpl) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	log := correlation.Logger(ctx, s.logger)

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		log.Info("Rejected invalid user", zap.Error(err))
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidUser, err)
	}

	id, err := s.newID()
	if err != nil {
		return models.User{}, fmt.Errorf("generate user id: %w", err)
	}

	user := models.User{
		ID:        id.String(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.storage.Save(ctx, user); err != nil {
		if errors.Is(err, storage.ErrEmailConflict) {
			log.Info("User email already exists", zap.String("email", user.Email))
			return models.User{}, err
		}
		log.Error("Error saving user", zap.Error(err))
		return models.User{}, fmt.Errorf("save user: %w", err)
	}

	log.Info("User created", zap.String("user_id", user.ID))
	return user, nil
}

// GetUser возвращает пользователя по ID
func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.storage.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			correlation.Logger(ctx, s.logger).Error("Error getting user", zap.String("user_id", id), zap.Error(err))
		}
		return models.User{}, err
	}
	return user, nil
}

// ListUsers возвращает всех пользователей
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.storage.List(ctx)
	if err != nil {
		correlation.Logger(ctx, s.logger).Error("Error listing users", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CheckConnection проверяет доступность хранилища
func (s *UserServiceImpl) CheckConnection(ctx context.Context) error {
	checker, ok := s.storage.(storage.DatabaseChecker)
	if !ok {
		return nil
	}
	return checker.CheckConnection(ctx)
}
