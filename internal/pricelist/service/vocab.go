package service

import (
	"regexp"
	"strings"

	"pricelist-service/internal/pricelist/model"
)

// headerKind шире, чем ColumnRole: "просто цена" ролью не является,
// пока классификатор не решит, с НДС она или без.
type headerKind int

const (
	kindNone headerKind = iota
	kindTitle
	kindPriceWithTax
	kindPriceWithoutTax
	kindPrice
	kindUnit
	kindSku
	kindRowIndex
)

func (k headerKind) role() model.ColumnRole {
	switch k {
	case kindTitle:
		return model.RoleTitle
	case kindPriceWithTax, kindPrice:
		return model.RolePriceWithTax
	case kindPriceWithoutTax:
		return model.RolePriceWithoutTax
	case kindUnit:
		return model.RoleUnit
	case kindSku:
		return model.RoleSku
	case kindRowIndex:
		return model.RoleRowIndex
	}
	return model.RoleUnassigned
}

type vocabEntry struct {
	kind     headerKind
	priority int
	patterns []*regexp.Regexp
}

func res(ps ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(ps))
	for i, p := range ps {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Словарь заголовков. Новый синоним/язык — новая строка, а не новая ветка кода.
// \b в Go-regexp только ASCII, поэтому для кириллицы границы слов пишем явно.
var vocabulary = []vocabEntry{
	{kindPriceWithoutTax, 30, res(
		`без\s*(учета\s*)?ндс`, `ндс\s*не\s*облаг`, `без\s*налог`,
		`(excl\.?|excluding|without|w/o|net\s+of)\s*(vat|tax)`, `\bnet\s+price\b`, `\bex\.?\s*vat\b`,
	)},
	{kindPriceWithTax, 30, res(
		`(^|[^\p{L}])(с|вкл\.?|включая)\s*ндс`, `ндс\s*включ`, `с\s*учетом\s*ндс`,
		`(incl\.?|including|with)\s*(vat|tax)`, `\bgross\b`,
	)},
	{kindPrice, 20, res(`(^|[^\p{L}])цен[аыу]?([^\p{L}]|$)`, `(^|[^\p{L}])стоимост`, `\bprice\b`, `\bcost\b`, `\brate\b`)},
	{kindTitle, 10, res(
		`наименовани`, `номенклатур`, `^товары?$`, `^продукци[яи]$`, `^позици[яи]$`,
		`^описание$`, `^name$`, `^title$`, `^item( name)?$`, `^product( name)?$`, `^description$`,
	)},
	{kindUnit, 10, res(`^ед(\.|\s|$)`, `единиц[аы]?\s*измер`, `^изм\.?$`, `^unit`, `\buom\b`, `^фасовка$`)},
	{kindSku, 10, res(`артикул`, `^арт\.?`, `^код(\s|$)`, `\bsku\b`, `^article`, `part\s*(no|number)`, `vendor\s*code`)},
	{kindRowIndex, 5, res(`^№`, `^n$`, `^no\.?$`, `^#$`, `^п/п$`, `^пп$`)},
}

// Итоговые строки прайса ("Итого", "Всего по разделу").
var rxTotalRow = regexp.MustCompile(`^(итого|всего|total|subtotal)`)

// normHeader: нижний регистр, ё->е, пробелы схлопнуты.
func normHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("ё", "е", "\u00a0", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// scoreCell — единственная функция, которая сверяет текст ячейки со словарём.
// Побеждает запись с наибольшим приоритетом, при равенстве — та, что выше в таблице.
func scoreCell(text string) (headerKind, int) {
	s := normHeader(text)
	if s == "" {
		return kindNone, 0
	}
	best, bestScore := kindNone, 0
	for _, e := range vocabulary {
		if e.priority <= bestScore {
			continue
		}
		for _, re := range e.patterns {
			if re.MatchString(s) {
				best, bestScore = e.kind, e.priority
				break
			}
		}
	}
	return best, bestScore
}

// Подписи колонок целиком. Подстрока не в счёт: "Цена договорная" — это данные.
var captionPatterns = res(
	`^(№|#|n|no\.?|№ ?п/п|п/п|пп)$`,
	`^(наименование|номенклатура|описание|товары?|продукция|позиция|name|title|item|product|description)( (товара|товаров|продукции|услуг|услуги|работ|материала|материалов|позиции))?$`,
	`^(цена|стоимость|price|cost)(,? ?(руб\.?|р\.?|₽|rub))?(,? ?(с|без|вкл\.?|включая) (учетом )?ндс)?(,? ?(руб\.?|р\.?|₽|rub))?$`,
	`^(ед\.?|ед\. ?изм\.?|единица измерения|единицы измерения|изм\.?|unit|uom|фасовка)$`,
	`^(артикул|арт\.?|код|код товара|sku|article|part (no|number)|vendor code)$`,
	`^(кол-?во|количество|qty|quantity|сумма|amount|примечание|note)$`,
)

// isCaption — ячейка целиком совпадает с подписью колонки.
func isCaption(text string) bool {
	s := normHeader(text)
	if s == "" {
		return false
	}
	for _, re := range captionPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
