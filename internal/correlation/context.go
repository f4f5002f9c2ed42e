package correlation

import "context"

// ctxKey неэкспортируемый тип ключа, чтобы избежать коллизий в контексте.
type ctxKey struct{}

// WithID возвращает контекст с привязанным идентификатором.
func WithID(ctx context.Context, id ID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext извлекает идентификатор из контекста.
func FromContext(ctx context.Context) (ID, bool) {
	if ctx == nil {
		return ID{}, false
	}
	id, ok := ctx.Value(ctxKey{}).(ID)
	if !ok || id.Value == "" {
		return ID{}, false
	}
	return id, true
}

// ValueFromContext возвращает значение идентификатора или пустую строку.
func ValueFromContext(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.Value
}
