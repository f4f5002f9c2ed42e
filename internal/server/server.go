// Package server предоставляет общую функциональность для запуска HTTP и HTTPS серверов.
// Пакет инкапсулирует логику инициализации конфигурации, логгера и запуска серверов.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Starter интерфейс для запуска сервера
type Starter interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// HTTPServer представляет HTTP сервер с общей логикой запуска
type HTTPServer struct {
	server *http.Server
	config *config.Config
	logger *zap.Logger
}

var _ Starter = (*HTTPServer)(nil)

// NewHTTPServer создает новый HTTP сервер
func NewHTTPServer(server *http.Server, cfg *config.Config, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		server: server,
		config: cfg,
		logger: logger,
	}
}

// Start запускает HTTP или HTTPS сервер в зависимости от конфигурации.
// Остановка через Shutdown не считается ошибкой.
func (s *HTTPServer) Start() error {
	var err error
	if s.config.IsHTTPSEnabled() {
		err = s.startHTTPS()
	} else {
		err = s.startHTTP()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve обслуживает соединения уже открытого listener'а
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("address", ln.Addr().String()))
	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает прием соединений и ждет завершения активных запросов
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// startHTTPS запускает HTTPS сервер
func (s *HTTPServer) startHTTPS() error {
	s.logger.Info("Starting HTTPS server",
		zap.String("address", s.config.ServerAddress),
		zap.String("cert", s.config.TLSCertFile),
		zap.String("key", s.config.TLSKeyFile))

	return s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
}

// startHTTP запускает HTTP сервер
func (s *HTTPServer) startHTTP() error {
	s.logger.Info("Starting HTTP server", zap.String("address", s.config.ServerAddress))
	return s.server.ListenAndServe()
}

// InitLogger инициализирует production логгер с функцией синхронизации.
// Если задан cfg.LogFile, логи пишутся в файл с ротацией, иначе в stderr.
func InitLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	var rotator *lumberjack.Logger
	if cfg.LogFile != "" {
		rotator = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // мегабайты
			MaxBackups: 5,
			MaxAge:     28, // дни
			Compress:   true,
		}
		sink = zapcore.AddSync(rotator)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	cleanup := func() {
		// Sync для stderr на некоторых платформах возвращает EINVAL
		_ = logger.Sync()
		if rotator != nil {
			if err := rotator.Close(); err != nil {
				log.Printf("Error closing log file: %v", err)
			}
		}
	}

	return logger, cleanup, nil
}

// InitConfig инициализирует конфигурацию приложения
func InitConfig(logger *zap.Logger) *config.Config {
	cfg, err := config.NewConfig()
	if err != nil {
		if logger != nil {
			logger.Fatal("Error loading config", zap.Error(err))
		} else {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	return cfg
}
