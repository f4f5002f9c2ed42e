// Package buildinfo предоставляет информацию о сборке приложения.
// Значения задаются через -ldflags "-X main.buildVersion=..." в пакете main
// и передаются сюда через NewInfo.
package buildinfo

import (
	"fmt"
	"io"
	"runtime"

	"go.uber.org/zap"
)

const notAvailable = "N/A"

// Info содержит информацию о сборке приложения
type Info struct {
	Version   string `json:"version"`
	Date      string `json:"date"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// DefaultInfo возвращает информацию о сборке по умолчанию
func DefaultInfo() *Info {
	return NewInfo("", "", "")
}

// NewInfo создает информацию о сборке. Пустые значения заменяются на "N/A".
func NewInfo(version, date, commit string) *Info {
	return &Info{
		Version:   orNA(version),
		Date:      orNA(date),
		Commit:    orNA(commit),
		GoVersion: runtime.Version(),
	}
}

// Fprint выводит информацию о сборке в w
func (info *Info) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n",
		info.Version, info.Date, info.Commit)
	return err
}

// Fields возвращает поля для структурированного лога
func (info *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", info.Version),
		zap.String("build_date", info.Date),
		zap.String("commit", info.Commit),
		zap.String("go_version", info.GoVersion),
	}
}

// String возвращает строковое представление информации о сборке
func (info *Info) String() string {
	return fmt.Sprintf("Version: %s, Date: %s, Commit: %s", info.Version, info.Date, info.Commit)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
