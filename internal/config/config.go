// Package config собирает конфигурацию сервиса из значений по умолчанию,
// JSON-файла, флагов командной строки и переменных окружения.
//
// Приоритет (от низшего к высшему): значения по умолчанию, JSON-файл, флаги, окружение.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/http/httpguts"
)

// Config хранит конфигурацию приложения.
type Config struct {
	ServerAddress   string `env:"SERVER_ADDRESS"`    // Адрес для запуска HTTP-сервера
	BaseURL         string `env:"BASE_URL"`          // Внешний адрес сервиса
	FileStoragePath string `env:"FILE_STORAGE_PATH"` // Путь к файлу хранилища
	DatabaseDSN     string `env:"DATABASE_DSN"`      // Строка подключения к PostgreSQL
	ConfigFile      string `env:"CONFIG"`            // Путь к JSON-файлу конфигурации

	EnableHTTPS string `env:"ENABLE_HTTPS"` // Любое непустое значение включает HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`

	CorrelationHeader  string   `env:"CORRELATION_HEADER"`                     // Заголовок correlation id
	CorrelationInclude []string `env:"CORRELATION_INCLUDE" envSeparator:","` // Шаблоны путей, получающих id
	CorrelationExclude []string `env:"CORRELATION_EXCLUDE" envSeparator:","` // Шаблоны путей, которые пропускаются

	StaticDir       string        `env:"STATIC_DIR"`
	LogLevel        string        `env:"LOG_LEVEL"`
	LogFile         string        `env:"LOG_FILE"` // Пустое значение пишет в stderr
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ServerAddress:      ":8080",
		BaseURL:            "http://localhost:8080",
		TLSCertFile:        "server.crt",
		TLSKeyFile:         "server.key",
		CorrelationHeader:  "X-Correlation-ID",
		CorrelationInclude: []string{"/**"},
		CorrelationExclude: []string{"/static/**", "/favicon.ico", "/robots.txt", "/metrics"},
		StaticDir:          "static",
		LogLevel:           "info",
		ShutdownTimeout:    10 * time.Second,
	}
}

// flagValues значения флагов до применения поверх JSON-файла
type flagValues struct {
	serverAddress, baseURL, fileStoragePath, databaseDSN, configFile string
	enableHTTPS                                                      bool
	correlationHeader, correlationInclude, correlationExclude        string
	staticDir, logLevel, logFile                                     string
	shutdownTimeout                                                  time.Duration
}

func registerFlags(fs *flag.FlagSet, cfg *Config) *flagValues {
	fv := &flagValues{}
	fs.StringVar(&fv.serverAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	fs.StringVar(&fv.baseURL, "b", cfg.BaseURL, "Внешний адрес сервиса (env: BASE_URL)")
	fs.StringVar(&fv.fileStoragePath, "f", cfg.FileStoragePath, "Путь к файлу хранилища (env: FILE_STORAGE_PATH)")
	fs.StringVar(&fv.databaseDSN, "d", cfg.DatabaseDSN, "Строка подключения к PostgreSQL (env: DATABASE_DSN)")
	fs.StringVar(&fv.configFile, "c", cfg.ConfigFile, "Путь к JSON-файлу конфигурации (env: CONFIG)")
	fs.BoolVar(&fv.enableHTTPS, "s", false, "Включить HTTPS (env: ENABLE_HTTPS)")
	fs.StringVar(&fv.correlationHeader, "correlation-header", cfg.CorrelationHeader, "Заголовок correlation id (env: CORRELATION_HEADER)")
	fs.StringVar(&fv.correlationInclude, "correlation-include", strings.Join(cfg.CorrelationInclude, ","), "Шаблоны путей через запятую (env: CORRELATION_INCLUDE)")
	fs.StringVar(&fv.correlationExclude, "correlation-exclude", strings.Join(cfg.CorrelationExclude, ","), "Исключаемые шаблоны путей через запятую (env: CORRELATION_EXCLUDE)")
	fs.StringVar(&fv.staticDir, "static", cfg.StaticDir, "Каталог статических файлов (env: STATIC_DIR)")
	fs.StringVar(&fv.logLevel, "l", cfg.LogLevel, "Уровень логирования (env: LOG_LEVEL)")
	fs.StringVar(&fv.logFile, "log-file", cfg.LogFile, "Файл логов с ротацией (env: LOG_FILE)")
	fs.DurationVar(&fv.shutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Таймаут graceful shutdown (env: SHUTDOWN_TIMEOUT)")
	return fv
}

// apply переносит в cfg только явно заданные флаги
func (fv *flagValues) apply(fs *flag.FlagSet, cfg *Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			cfg.ServerAddress = fv.serverAddress
		case "b":
			cfg.BaseURL = fv.baseURL
		case "f":
			cfg.FileStoragePath = fv.fileStoragePath
		case "d":
			cfg.DatabaseDSN = fv.databaseDSN
		case "c":
			cfg.ConfigFile = fv.configFile
		case "s":
			if fv.enableHTTPS {
				cfg.EnableHTTPS = "true"
			} else {
				cfg.EnableHTTPS = ""
			}
		case "correlation-header":
			cfg.CorrelationHeader = fv.correlationHeader
		case "correlation-include":
			cfg.CorrelationInclude = splitList(fv.correlationInclude)
		case "correlation-exclude":
			cfg.CorrelationExclude = splitList(fv.correlationExclude)
		case "static":
			cfg.StaticDir = fv.staticDir
		case "l":
			cfg.LogLevel = fv.logLevel
		case "log-file":
			cfg.LogFile = fv.logFile
		case "shutdown-timeout":
			cfg.ShutdownTimeout = fv.shutdownTimeout
		}
	})
}

// NewConfig инициализирует конфигурацию, читая JSON-файл, флаги и переменные окружения.
func NewConfig() (*Config, error) {
	cfg := Default()

	// 1. Определение и парсинг флагов командной строки
	fv := registerFlags(flag.CommandLine, cfg)
	flag.Parse()

	// 2. JSON-файл: путь из окружения важнее пути из флага
	configFile := fv.configFile
	if v, ok := os.LookupEnv("CONFIG"); ok {
		configFile = v
	}
	if configFile != "" {
		jc, err := loadJSONConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg.applyJSONConfig(jc)
		cfg.ConfigFile = configFile
	}

	// 3. Флаги перекрывают JSON-файл
	fv.apply(flag.CommandLine, cfg)

	// 4. Переменные окружения (имеют наивысший приоритет)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsHTTPSEnabled сообщает, нужно ли запускать HTTPS сервер
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS != ""
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("server address is empty"))
	}
	if !httpguts.ValidHeaderFieldName(c.CorrelationHeader) {
		errs = append(errs, fmt.Errorf("invalid correlation header name %q", c.CorrelationHeader))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if c.IsHTTPSEnabled() && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("HTTPS requires TLS certificate and key files"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
