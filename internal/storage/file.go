package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"go.uber.org/zap"
)

// FileStorage хранит пользователей в памяти и дописывает каждую запись
// в файл JSON lines. При старте файл перечитывается.
type FileStorage struct {
	mem      *MemoryStorage
	filePath string
	mutex    sync.Mutex
	file     *os.File
	logger   *zap.Logger
}

// NewFileStorage создает новый экземпляр FileStorage
func NewFileStorage(filePath string, logger *zap.Logger) (*FileStorage, error) {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	fs := &FileStorage{
		mem:      NewMemoryStorage(logger),
		filePath: filePath,
		file:     file,
		logger:   logger,
	}

	if err := fs.loadFromFile(); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Error closing storage file", zap.Error(closeErr))
		}
		return nil, err
	}

	return fs, nil
}

// loadFromFile загружает записи из файла в память
func (fs *FileStorage) loadFromFile() error {
	if _, err := fs.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to file start: %w", err)
	}

	ctx := context.Background()
	decoder := json.NewDecoder(fs.file)
	loaded := 0
	for decoder.More() {
		var user models.User
		if err := decoder.Decode(&user); err != nil {
			return fmt.Errorf("error decoding record %d: %w", loaded+1, err)
		}
		if err := fs.mem.Save(ctx, user); err != nil {
			fs.logger.Warn("Skipping conflicting record", zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		loaded++
	}

	fs.logger.Info("Users loaded from file", zap.String("path", fs.filePath), zap.Int("count", loaded))
	return nil
}

// Save сохраняет пользователя в памяти и дописывает его в файл
func (fs *FileStorage) Save(ctx context.Context, user models.User) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if existing, err := fs.mem.GetByEmail(ctx, user.Email); err == nil && existing.ID != user.ID {
		return ErrEmailConflict
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("error marshaling user record: %w", err)
	}
	if _, err := fs.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	correlation.Logger(ctx, fs.logger).Debug("User appended to file", zap.String("user_id", user.ID))
	return fs.mem.Save(ctx, user)
}

// Get получает пользователя по ID
func (fs *FileStorage) Get(ctx context.Context, id string) (models.User, error) {
	return fs.mem.Get(ctx, id)
}

// GetByEmail получает пользователя по email
func (fs *FileStorage) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return fs.mem.GetByEmail(ctx, email)
}

// List возвращает всех пользователей
func (fs *FileStorage) List(ctx context.Context) ([]models.User, error) {
	return fs.mem.List(ctx)
}

// CheckConnection проверяет, что файл хранилища доступен
func (fs *FileStorage) CheckConnection(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := fs.file.Stat(); err != nil {
		return fmt.Errorf("storage file unavailable: %w", err)
	}
	return nil
}

// Close закрывает файл
func (fs *FileStorage) Close() error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return fs.file.Close()
}
