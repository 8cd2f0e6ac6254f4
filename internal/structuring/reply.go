package structuring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/utils"
)

// Схема одного элемента. Строгая только к title: цену/единицу разбираем сами и мягко.
const itemSchema = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1}
  }
}`

var compiledItemSchema = jsonschema.MustCompileString("item.json", itemSchema)

// ParseReply достаёт JSON-массив из ответа сервиса: снимает ```-обёртку,
// берёт от первой "[" до последней "]" (модель любит добавлять прозу вокруг).
// Возвращает позиции и число отброшенных элементов.
func ParseReply(reply string) ([]model.NormalizedItem, int, error) {
	s := stripFences(reply)
	if s == "" {
		return nil, 0, ErrEmptyReply
	}

	start, end := strings.Index(s, "["), strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, 0, fmt.Errorf("%w: no JSON array in reply", ErrMalformedReply)
	}

	var doc any
	if err := json.Unmarshal([]byte(s[start:end+1]), &doc); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	arr, ok := doc.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: reply is not an array", ErrMalformedReply)
	}

	items := make([]model.NormalizedItem, 0, len(arr))
	dropped := 0
	for _, el := range arr {
		if err := compiledItemSchema.Validate(el); err != nil {
			dropped++
			continue
		}
		obj := el.(map[string]any)
		title := strings.Join(strings.Fields(obj["title"].(string)), " ")
		if title == "" {
			dropped++
			continue
		}
		it := model.NewItem(title, toPrice(obj["price"]), nil, toUnit(obj["unit"]), nil)
		if c := toText(obj["category"]); c != nil {
			it.Category = c
		}
		items = append(items, it)
	}
	return items, dropped, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func toPrice(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		return utils.ParsePrice(t)
	}
	return nil
}

func toUnit(v any) *string {
	s := toText(v)
	if s == nil {
		return nil
	}
	if canon, ok := utils.CanonicalUnit(*s); ok {
		return &canon
	}
	return s
}

func toText(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
