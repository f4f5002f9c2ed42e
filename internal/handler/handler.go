// Package handler содержит HTTP обработчики API и HTML-страниц.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/InQaaaaGit/usersvc.git/internal/buildinfo"
	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/metrics"
	"github.com/InQaaaaGit/usersvc.git/internal/middleware"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/InQaaaaGit/usersvc.git/internal/service"
	"github.com/InQaaaaGit/usersvc.git/internal/storage"
	"github.com/InQaaaaGit/usersvc.git/internal/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"
	maxBodyBytes    = 1 << 20

	userNotFoundMessage = "user not found"
)

type Handler struct {
	service service.UserService
	cfg     *config.Config
	logger  *zap.Logger
	build   *buildinfo.Info
	pages   *pages
}

func NewHandler(service service.UserService, cfg *config.Config, logger *zap.Logger, build *buildinfo.Info) (*Handler, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	if build == nil {
		build = buildinfo.DefaultInfo()
	}
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
		build:   build,
		pages:   p,
	}, nil
}

// HandleCreateUser обрабатывает POST /api/users
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, contentTypeJSON) {
		h.writeError(w, r, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		if err := r.Body.Close(); err != nil {
			h.log(r).Error("Error closing request body", zap.Error(err))
		}
	}()

	var req models.CreateUserRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		if verrs, ok := validation.AsErrors(err); ok {
			h.writeError(w, r, http.StatusBadRequest, "Validation failed", verrs)
			return
		}
		if errors.Is(err, storage.ErrEmailConflict) {
			h.writeError(w, r, http.StatusConflict, "email already exists", nil)
			return
		}
		h.log(r).Error("Error creating user", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	w.Header().Set("Location", "/api/users/"+user.ID)
	h.writeJSON(w, r, http.StatusCreated, user)
}

// HandleListUsers обрабатывает GET /api/users
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, users)
}

// HandleGetUser обрабатывает GET /api/users/{id}
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.writeError(w, r, http.StatusNotFound, userNotFoundMessage, nil)
			return
		}
		h.writeError(w, r, http.StatusInternalServerError, "Internal server error", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, user)
}

// HandlePing проверяет соединение с хранилищем
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CheckConnection(r.Context()); err != nil {
		h.log(r).Error("Storage connection error", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "Storage connection error", nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.PingResponse{
		Status:        "ok",
		CorrelationID: correlation.ValueFromContext(r.Context()),
	})
}

// HandleVersion возвращает информацию о сборке
func (h *Handler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.build)
}

// WithLogging добавляет логирование запросов с correlation id
func (h *Handler) WithLogging(next http.Handler) http.Handler {
	return middleware.LoggerMiddleware(h.logger)(next)
}

// WithMetrics учитывает запросы в prometheus
func (h *Handler) WithMetrics(next http.Handler) http.Handler {
	return middleware.MetricsMiddleware(metrics.ObserveRequest)(next)
}

// WithGzip добавляет поддержку gzip сжатия
func (h *Handler) WithGzip(next http.Handler) http.Handler {
	return middleware.GzipMiddleware(next)
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	return correlation.Logger(r.Context(), h.logger)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log(r).Error("Error writing JSON response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, verrs validation.Errors) {
	h.writeJSON(w, r, status, models.ErrorResponse{
		Error:         msg,
		CorrelationID: correlation.ValueFromContext(r.Context()),
		Errors:        verrs,
	})
}
