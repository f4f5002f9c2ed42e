package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONConfig содержимое JSON-файла конфигурации.
// Поля-указатели позволяют отличить отсутствующее значение от пустого.
type JSONConfig struct {
	ServerAddress      *string  `json:"server_address,omitempty"`
	BaseURL            *string  `json:"base_url,omitempty"`
	FileStoragePath    *string  `json:"file_storage_path,omitempty"`
	DatabaseDSN        *string  `json:"database_dsn,omitempty"`
	EnableHTTPS        *bool    `json:"enable_https,omitempty"`
	TLSCertFile        *string  `json:"tls_cert_file,omitempty"`
	TLSKeyFile         *string  `json:"tls_key_file,omitempty"`
	CorrelationHeader  *string  `json:"correlation_header,omitempty"`
	CorrelationInclude []string `json:"correlation_include,omitempty"`
	CorrelationExclude []string `json:"correlation_exclude,omitempty"`
	StaticDir          *string  `json:"static_dir,omitempty"`
	LogLevel           *string  `json:"log_level,omitempty"`
	LogFile            *string  `json:"log_file,omitempty"`
	ShutdownTimeout    *string  `json:"shutdown_timeout,omitempty"` // например "15s"
}

// loadJSONConfig читает JSON-файл. Пустое имя файла дает пустую конфигурацию.
func loadJSONConfig(filename string) (*JSONConfig, error) {
	jc := &JSONConfig{}
	if filename == "" {
		return jc, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, jc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", filename, err)
	}
	if jc.ShutdownTimeout != nil {
		if _, err := time.ParseDuration(*jc.ShutdownTimeout); err != nil {
			return nil, fmt.Errorf("parse shutdown_timeout: %w", err)
		}
	}
	return jc, nil
}

// applyJSONConfig применяет заданные в файле значения
func (c *Config) applyJSONConfig(jc *JSONConfig) {
	setString(&c.ServerAddress, jc.ServerAddress)
	setString(&c.BaseURL, jc.BaseURL)
	setString(&c.FileStoragePath, jc.FileStoragePath)
	setString(&c.DatabaseDSN, jc.DatabaseDSN)
	setString(&c.TLSCertFile, jc.TLSCertFile)
	setString(&c.TLSKeyFile, jc.TLSKeyFile)
	setString(&c.CorrelationHeader, jc.CorrelationHeader)
	setString(&c.StaticDir, jc.StaticDir)
	setString(&c.LogLevel, jc.LogLevel)
	setString(&c.LogFile, jc.LogFile)

	if jc.EnableHTTPS != nil {
		if *jc.EnableHTTPS {
			c.EnableHTTPS = "true"
		} else {
			c.EnableHTTPS = ""
		}
	}
	if jc.CorrelationInclude != nil {
		c.CorrelationInclude = jc.CorrelationInclude
	}
	if jc.CorrelationExclude != nil {
		c.CorrelationExclude = jc.CorrelationExclude
	}
	if jc.ShutdownTimeout != nil {
		// формат проверен в loadJSONConfig
		if d, err := time.ParseDuration(*jc.ShutdownTimeout); err == nil {
			c.ShutdownTimeout = d
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
