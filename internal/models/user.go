// Package models содержит доменные типы пользователей и DTO HTTP API.
package models

import (
	"strings"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/validation"
)

// User пользователь сервиса
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest тело запроса POST /api/users
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// Normalize обрезает пробелы и приводит email к нижнему регистру
func (r CreateUserRequest) Normalize() CreateUserRequest {
	return CreateUserRequest{
		Name:  strings.TrimSpace(r.Name),
		Email: strings.ToLower(strings.TrimSpace(r.Email)),
	}
}

// Validate проверяет запрос по тегам validate
func (r CreateUserRequest) Validate() error {
	return validation.Validate(r)
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error         string                  `json:"error"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
	Errors        []validation.FieldError `json:"errors,omitempty"`
}

// PingResponse тело ответа /ping
type PingResponse struct {
	Status        string `json:"status"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
