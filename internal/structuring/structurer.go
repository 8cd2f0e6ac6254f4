// Package structuring превращает неструктурированный текст (PDF, DOCX, "кривые" таблицы)
// в позиции прайса через внешний сервис разметки (LLM).
package structuring

import (
	"context"
	"errors"

	"pricelist-service/internal/pricelist/model"
)

// Structurer — внешняя способность "текст -> позиции". В тестах подменяется Func.
type Structurer interface {
	Structure(ctx context.Context, text string) ([]model.NormalizedItem, error)
}

// Func позволяет использовать обычную функцию как Structurer.
type Func func(ctx context.Context, text string) ([]model.NormalizedItem, error)

func (f Func) Structure(ctx context.Context, text string) ([]model.NormalizedItem, error) {
	return f(ctx, text)
}

// Разные отказы — разные ошибки: "сервис не ответил" не должно выглядеть как "позиций нет".
var (
	ErrServiceUnavailable = errors.New("structuring service unavailable")
	ErrServiceError       = errors.New("structuring service error")
	ErrEmptyReply         = errors.New("empty structuring reply")
	ErrMalformedReply     = errors.New("malformed structuring reply")
)

// Request — контракт запроса к сервису разметки.
type Request struct {
	Instructions string `json:"instructions"`
	SourceText   string `json:"sourceText"`
}

const Instructions = `You extract supplier price list items from raw document text (usually Russian).
Return ONLY a JSON array, no prose, no markdown. Each element must be an object:
{"title": string, "price": number or null, "unit": string or null, "category": string or null}
- title: product or service name exactly as written, without row numbers
- price: unit price as a number with a dot as decimal separator; prefer price including VAT (с НДС) when both are present; null if absent
- unit: unit of measure as written (шт, кг, м, уп ...); null if absent
- category: section heading the item belongs to, if any
Skip headers, totals (Итого, Всего), contact details and terms. If there are no items return [].`

func NewRequest(text string) Request {
	return Request{Instructions: Instructions, SourceText: text}
}
