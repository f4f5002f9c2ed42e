// Package metrics содержит prometheus-метрики сервиса.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CorrelationIDs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usersvc",
			Name:      "correlation_ids_total",
			Help:      "Correlation ids resolved per request, by source.",
		},
		[]string{"source"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "usersvc",
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "usersvc",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

var registerOnce sync.Once

// Register регистрирует метрики сервиса в реестре по умолчанию. Повторные вызовы ничего не делают.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(CorrelationIDs, HTTPRequests, HTTPRequestDuration)
	})
}

// ObserveCorrelation учитывает источник correlation id
func ObserveCorrelation(source correlation.Source) {
	CorrelationIDs.WithLabelValues(string(source)).Inc()
}

// methodOther метка для методов вне стандартного набора
const methodOther = "other"

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// methodLabel ограничивает значения метки method стандартными методами
func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return methodOther
}

// ObserveRequest учитывает обработанный запрос
func ObserveRequest(method string, status int, d time.Duration) {
	method = methodLabel(method)
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}
