package correlation

import (
	"context"

	"go.uber.org/zap"
)

// LogField имя поля лога с идентификатором.
const LogField = "correlation_id"

// Field возвращает поле лога с идентификатором из контекста.
// Если идентификатора нет, возвращается zap.Skip().
func Field(ctx context.Context) zap.Field {
	id, ok := FromContext(ctx)
	if !ok {
		return zap.Skip()
	}
	return zap.String(LogField, id.Value)
}

// Logger возвращает логгер, дополненный идентификатором запроса.
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	id, ok := FromContext(ctx)
	if !ok {
		return base
	}
	return base.With(zap.String(LogField, id.Value))
}
