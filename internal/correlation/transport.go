package correlation

import "net/http"

// Transport пробрасывает correlation id из контекста исходящего запроса
// в его заголовки.
type Transport struct {
	next   http.RoundTripper
	header string
}

// NewTransport оборачивает next. Пустой header означает DefaultHeader.
func NewTransport(next http.RoundTripper, header string) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if header == "" {
		header = DefaultHeader
	}
	return &Transport{next: next, header: http.CanonicalHeaderKey(header)}
}

// RoundTrip реализует http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	id, ok := FromContext(req.Context())
	if !ok || req.Header.Get(t.header) != "" {
		return t.next.RoundTrip(req)
	}

	// RoundTripper не должен изменять исходный запрос
	clone := req.Clone(req.Context())
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	clone.Header.Set(t.header, id.Value)
	return t.next.RoundTrip(clone)
}

// CloseIdleConnections закрывает простаивающие соединения нижележащего транспорта.
func (t *Transport) CloseIdleConnections() {
	if ci, ok := t.next.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}
