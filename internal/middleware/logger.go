package middleware

import (
	"net/http"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// LoggerMiddleware создает middleware для логирования запросов и ответов.
// Если в контексте запроса есть correlation id, он попадает в запись лога.
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Обертка отслеживает статус и размер ответа
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			correlation.Logger(r.Context(), logger).Info("Request processed",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Duration("latency", time.Since(start)),
				zap.Int("status", statusOf(ww)),
				zap.Int("size", ww.BytesWritten()),
			)
		})
	}
}

// MetricsMiddleware передает в observe метод, статус и длительность каждого запроса
func MetricsMiddleware(observe func(method string, status int, d time.Duration)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			observe(r.Method, statusOf(ww), time.Since(start))
		})
	}
}

// statusOf возвращает 200, если обработчик не вызывал WriteHeader
func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
