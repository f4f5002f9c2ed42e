// Package client содержит HTTP клиент к API сервиса с повторами запросов
// и пробросом correlation id из контекста.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/correlation"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultRetryWaitMinimum = 100 * time.Millisecond
	defaultRetryWaitMaximum = 2 * time.Second
	defaultRetryMax         = 2

	// максимальный размер тела ответа с ошибкой, сохраняемого в StatusError
	maxErrorBody = 4 << 10
)

// ErrEmptyBaseURL возвращается New при пустом адресе сервиса
var ErrEmptyBaseURL = errors.New("base url is empty")

// Client HTTP клиент к API сервиса
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	header  string
}

type clientCfg struct {
	header                     string
	transport                  http.RoundTripper
	timeout                    time.Duration
	retryWaitMin, retryWaitMax time.Duration
	retryMax                   int
}

// Option настраивает Client
type Option func(*clientCfg)

// WithHeader задает заголовок correlation id
func WithHeader(name string) Option {
	return func(c *clientCfg) { c.header = name }
}

// WithTransport задает транспорт под слоем correlation id
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientCfg) { c.transport = rt }
}

// WithTimeout задает общий таймаут одной попытки
func WithTimeout(d time.Duration) Option {
	return func(c *clientCfg) { c.timeout = d }
}

// WithRetry задает число повторов и границы паузы между ними
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *clientCfg) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// New создает клиент к сервису по адресу baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}

	cfg := &clientCfg{
		header:       correlation.DefaultHeader,
		timeout:      defaultTimeout,
		retryWaitMin: defaultRetryWaitMinimum,
		retryWaitMax: defaultRetryWaitMaximum,
		retryMax:     defaultRetryMax,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := retryablehttp.NewClient()
	c.RetryMax = cfg.retryMax
	c.RetryWaitMin = cfg.retryWaitMin
	c.RetryWaitMax = cfg.retryWaitMax
	c.Logger = nil
	c.CheckRetry = retryPolicy
	base := cfg.transport
	if base == nil {
		base = c.HTTPClient.Transport
	}
	c.HTTPClient.Transport = correlation.NewTransport(base, cfg.header)
	c.HTTPClient.Timeout = cfg.timeout
	// после исчерпания повторов вызывающему нужен сам ответ, а не ошибка
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    c,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		header:  http.CanonicalHeaderKey(cfg.header),
	}, nil
}

// StatusError ответ сервиса с кодом вне диапазона 2xx
type StatusError struct {
	StatusCode    int
	Body          string
	CorrelationID string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (correlation id %q): %s", e.StatusCode, e.CorrelationID, e.Body)
}

// Response тело ответа и correlation id, который вернул сервис
type Response[T any] struct {
	Value         T
	CorrelationID string
}

// GetJSON выполняет GET запрос и декодирует JSON ответ в T
func GetJSON[T any](ctx context.Context, c *Client, path string) (Response[T], error) {
	return do[T](ctx, c, http.MethodGet, path, nil)
}

// PostJSON отправляет body в формате JSON и декодирует ответ в T
func PostJSON[T any](ctx context.Context, c *Client, path string, body any) (Response[T], error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Response[T]{}, fmt.Errorf("encode request: %w", err)
	}
	return do[T](ctx, c, http.MethodPost, path, payload)
}

// noRetryKey помечает контекст запроса, который нельзя повторять
type noRetryKey struct{}

// retryPolicy повторяет только идемпотентные запросы: повтор POST после
// ответа 5xx мог бы создать пользователя дважды или вернуть ложный 409
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Value(noRetryKey{}) != nil {
		return false, ctx.Err()
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete, http.MethodTrace:
		return true
	}
	return false
}

func do[T any](ctx context.Context, c *Client, method, path string, payload []byte) (Response[T], error) {
	var out Response[T]

	if !idempotent(method) {
		ctx = context.WithValue(ctx, noRetryKey{}, struct{}{})
	}

	var body any
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return out, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return out, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	out.CorrelationID = resp.Header.Get(c.header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return out, &StatusError{
			StatusCode:    resp.StatusCode,
			Body:          strings.TrimSpace(string(data)),
			CorrelationID: out.CorrelationID,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&out.Value); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// CloseIdleConnections закрывает простаивающие соединения транспорта
func (c *Client) CloseIdleConnections() {
	c.http.HTTPClient.CloseIdleConnections()
}
