package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/InQaaaaGit/usersvc.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex = "index"
	pageUser  = "user"
	pageError = "error"
)

// pages набор шаблонов: каждая страница разбирается вместе с layout,
// так как все они определяют блок "content"
type pages struct {
	byName map[string]*template.Template
}

// pageData данные, доступные шаблонам
type pageData struct {
	Title         string
	CorrelationID string
	Version       string
	Users         []models.User
	User          *models.User
	Message       string
}

func loadPages() (*pages, error) {
	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{pageIndex, pageUser, pageError} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

func (p *pages) render(w http.ResponseWriter, status int, name string, data pageData) error {
	t, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// HandleIndex отображает список пользователей
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please retry later.")
		return
	}

	h.renderPage(w, r, http.StatusOK, pageIndex, pageData{Title: "Users", Users: users})
}

// HandleUserPage отображает карточку пользователя
func (h *Handler) HandleUserPage(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.renderError(w, r, http.StatusNotFound, "User not found.")
			return
		}
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please retry later.")
		return
	}

	h.renderPage(w, r, http.StatusOK, pageUser, pageData{Title: user.Name, User: &user})
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.renderPage(w, r, status, pageError, pageData{Title: http.StatusText(status), Message: msg})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.CorrelationID = correlation.ValueFromContext(r.Context())
	data.Version = h.build.Version

	if err := h.pages.render(w, status, name, data); err != nil {
		h.log(r).Error("Error rendering page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
