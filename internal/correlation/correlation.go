// Package correlation назначает каждому входящему запросу correlation id,
// хранит его в контексте запроса и возвращает клиенту в заголовке ответа.
//
// Идентификатор либо принимается от вышестоящего сервиса через заголовок,
// либо генерируется как UUID v4. На один запрос приходится ровно один
// идентификатор, и он не меняется до конца обработки.
package correlation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultHeader заголовок, в котором correlation id передается в обе стороны.
const DefaultHeader = "X-Correlation-ID"

// Source описывает происхождение идентификатора.
type Source string

const (
	// SourceInboundHeader идентификатор пришел во входящем заголовке
	SourceInboundHeader Source = "inbound-header"
	// SourceGenerated идентификатор сгенерирован на этом сервисе
	SourceGenerated Source = "generated"
)

// ID correlation id запроса.
type ID struct {
	Value  string
	Source Source
}

// String возвращает значение идентификатора.
func (id ID) String() string {
	return id.Value
}

// newRandom подменяется в тестах для проверки отказа источника энтропии.
var newRandom = uuid.NewRandom

// Generate создает новый идентификатор на основе UUID v4.
// При отказе источника случайных чисел возвращает ошибку, запасного
// предсказуемого идентификатора нет.
func Generate() (ID, error) {
	u, err := newRandom()
	if err != nil {
		return ID{}, fmt.Errorf("generate correlation id: %w", err)
	}
	return ID{Value: u.String(), Source: SourceGenerated}, nil
}

// FromHeader возвращает идентификатор из значения заголовка.
// Значение непрозрачно и не интерпретируется, пустое или пробельное значение не считается идентификатором.
func FromHeader(value string) (ID, bool) {
	if strings.TrimSpace(value) == "" {
		return ID{}, false
	}
	return ID{Value: value, Source: SourceInboundHeader}, true
}
