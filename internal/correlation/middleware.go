package correlation

import (
	"net/http"

	"go.uber.org/zap"
)

type middlewareConfig struct {
	header   string
	matcher  *Matcher
	logger   *zap.Logger
	observer func(Source)
}

// Option настраивает Middleware.
type Option func(*middlewareConfig)

// WithHeader задает имя заголовка вместо DefaultHeader.
func WithHeader(name string) Option {
	return func(c *middlewareConfig) {
		if name != "" {
			c.header = http.CanonicalHeaderKey(name)
		}
	}
}

// WithMatcher ограничивает набор обрабатываемых путей.
func WithMatcher(m *Matcher) Option {
	return func(c *middlewareConfig) {
		if m != nil {
			c.matcher = m
		}
	}
}

// WithLogger задает логгер для ошибок генерации.
func WithLogger(logger *zap.Logger) Option {
	return func(c *middlewareConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver вызывается один раз на запрос с источником идентификатора.
func WithObserver(fn func(Source)) Option {
	return func(c *middlewareConfig) {
		c.observer = fn
	}
}

func applyOptions(opts []Option) middlewareConfig {
	cfg := middlewareConfig{
		header:  DefaultHeader,
		matcher: DefaultMatcher(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Middleware гарантирует наличие correlation id у каждого запроса, подходящего под Matcher.
//
// Идентификатор берется из входящего заголовка, если он не пустой, иначе генерируется.
// Он кладется в контекст запроса и в заголовок запроса для следующих обработчиков
// и выставляется в заголовке ответа. Запросы вне Matcher проходят без изменений.
func Middleware(opts ...Option) func(next http.Handler) http.Handler {
	cfg := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.matcher.Match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := FromContext(r.Context())
			if !ok {
				id, ok = FromHeader(r.Header.Get(cfg.header))
			}
			if !ok {
				var err error
				id, err = Generate()
				if err != nil {
					cfg.logger.Error("Failed to generate correlation id",
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Error(err))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			}

			if cfg.observer != nil {
				cfg.observer(id.Source)
			}

			ctx := WithID(r.Context(), id)
			req := r.WithContext(ctx)
			req.Header = r.Header.Clone()
			if req.Header == nil {
				req.Header = make(http.Header)
			}
			req.Header.Set(cfg.header, id.Value)

			w.Header().Set(cfg.header, id.Value)
			next.ServeHTTP(&headerWriter{ResponseWriter: w, header: cfg.header, value: id.Value}, req)
		})
	}
}

// headerWriter повторно выставляет заголовок перед отправкой статуса,
// чтобы обработчик не мог заменить идентификатор.
type headerWriter struct {
	http.ResponseWriter
	header      string
	value       string
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.ResponseWriter.Header().Set(w.header, w.value)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap позволяет http.ResponseController добраться до исходного writer.
func (w *headerWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush пробрасывает сброс буфера, если writer его поддерживает.
func (w *headerWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
