// Package app содержит основную структуру приложения и логику инициализации.
// Предоставляет точку входа для запуска HTTP сервера с настроенными маршрутами и middleware.
package app

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/buildinfo"
	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/InQaaaaGit/usersvc.git/internal/handler"
	"github.com/InQaaaaGit/usersvc.git/internal/metrics"
	"github.com/InQaaaaGit/usersvc.git/internal/service"
	"github.com/InQaaaaGit/usersvc.git/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App представляет основное приложение сервиса пользователей.
// Инкапсулирует конфигурацию, HTTP роутер, логгер, хранилище и обработчики запросов.
type App struct {
	config  *config.Config      // Конфигурация приложения
	router  *chi.Mux            // HTTP роутер для обработки запросов
	logger  *zap.Logger         // Логгер для записи событий приложения
	storage storage.UserStorage // Хранилище пользователей
	handler *handler.Handler    // Обработчики HTTP запросов
}

// NewApp создает и инициализирует новый экземпляр приложения.
// Открывает хранилище, создает сервисный слой, обработчики и регистрирует маршруты.
//
// Параметры:
//   - cfg: конфигурация приложения с настройками сервера и хранилища
//   - logger: базовый логгер приложения
//   - build: информация о сборке для /api/version, может быть nil
//
// Возвращает указатель на App или ошибку при неудачной инициализации зависимостей.
func NewApp(cfg *config.Config, logger *zap.Logger, build *buildinfo.Info) (*App, error) {
	matcher, err := correlation.NewMatcher(cfg.CorrelationInclude, cfg.CorrelationExclude)
	if err != nil {
		return nil, fmt.Errorf("error creating correlation matcher: %w", err)
	}

	st, err := storage.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating storage: %w", err)
	}

	h, err := handler.NewHandler(service.NewUserService(st, logger), cfg, logger, build)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("error creating handler: %w", err)
	}

	metrics.Register()

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		storage: st,
		handler: h,
	}
	a.setupRoutes(matcher)
	return a, nil
}

// setupRoutes настраивает HTTP маршруты и middleware для приложения.
// Correlation id назначается первым, чтобы все последующие слои видели его в контексте.
func (a *App) setupRoutes(matcher *correlation.Matcher) {
	// Middleware
	a.router.Use(correlation.Middleware(
		correlation.WithHeader(a.config.CorrelationHeader),
		correlation.WithMatcher(matcher),
		correlation.WithLogger(a.logger),
		correlation.WithObserver(metrics.ObserveCorrelation),
	))
	a.router.Use(a.handler.WithLogging)
	a.router.Use(a.handler.WithMetrics)
	a.router.Use(a.handler.WithGzip)

	// API
	a.router.Route("/api", func(r chi.Router) {
		r.Post("/users", a.handler.HandleCreateUser)
		r.Get("/users", a.handler.HandleListUsers)
		r.Get("/users/{id}", a.handler.HandleGetUser)
		r.Get("/version", a.handler.HandleVersion)
	})
	a.router.Get("/ping", a.handler.HandlePing)

	// HTML страницы
	a.router.Get("/", a.handler.HandleIndex)
	a.router.Get("/users/{id}", a.handler.HandleUserPage)

	// Статика и служебные маршруты
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(a.config.StaticDir))))
	a.router.Handle("/metrics", promhttp.Handler())

	// Профилирование
	a.router.Mount("/debug/pprof", http.DefaultServeMux)
}

// Router возвращает настроенный роутер приложения
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер.
// Использует текущий роутер приложения как обработчик запросов.
func (a *App) GetServer() *http.Server {
	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Close освобождает ресурсы хранилища
func (a *App) Close() error {
	if err := a.storage.Close(); err != nil {
		return fmt.Errorf("error closing storage: %w", err)
	}
	return nil
}
