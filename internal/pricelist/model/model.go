package model

import (
	"errors"
	"fmt"
)

// ColumnRole — смысл колонки прайса.
type ColumnRole int

const (
	RoleUnassigned ColumnRole = iota
	RoleTitle
	RolePriceWithTax
	RolePriceWithoutTax
	RoleUnit
	RoleSku
	RoleRowIndex
)

var roleNames = map[ColumnRole]string{
	RoleUnassigned:      "unassigned",
	RoleTitle:           "title",
	RolePriceWithTax:    "priceWithTax",
	RolePriceWithoutTax: "priceWithoutTax",
	RoleUnit:            "unit",
	RoleSku:             "sku",
	RoleRowIndex:        "rowIndex",
}

func (r ColumnRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

func (r ColumnRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// NormalizedItem — позиция прайса после нормализации, не зависит от формата файла.
type NormalizedItem struct {
	Title           string   `json:"title" validate:"required"`
	Price           *float64 `json:"price"`
	PriceWithTax    *float64 `json:"priceWithTax"`
	PriceWithoutTax *float64 `json:"priceWithoutTax"`
	Unit            *string  `json:"unit"`
	Sku             *string  `json:"sku"`
	Category        *string  `json:"category,omitempty"`
}

// NewItem собирает позицию и проставляет Price = PriceWithTax ?? PriceWithoutTax.
func NewItem(title string, withTax, withoutTax *float64, unit, sku *string) NormalizedItem {
	it := NormalizedItem{
		Title:           title,
		PriceWithTax:    withTax,
		PriceWithoutTax: withoutTax,
		Unit:            unit,
		Sku:             sku,
	}
	it.Price = it.ResolvedPrice()
	return it
}

// ResolvedPrice — Price, а если его не прислали (внешний JSON), то с НДС, затем без НДС.
func (it NormalizedItem) ResolvedPrice() *float64 {
	switch {
	case it.Price != nil:
		return it.Price
	case it.PriceWithTax != nil:
		return it.PriceWithTax
	default:
		return it.PriceWithoutTax
	}
}

// HeaderCandidate — строка, претендующая на роль шапки, и почему.
type HeaderCandidate struct {
	Row       int    `json:"row"`
	NonEmpty  int    `json:"nonEmpty"`
	TextCells int    `json:"textCells"`
	Matched   int    `json:"matched"`
	Strong    bool   `json:"strong"`
	Reason    string `json:"reason"`
}

type ColumnAssignment struct {
	Col    int        `json:"col"`
	Header string     `json:"header"`
	Role   ColumnRole `json:"role"`
	Score  int        `json:"score"`
}

// Layout — вывод классификатора структуры. Возвращается наружу, чтобы было видно,
// почему выбрана та или иная колонка.
type Layout struct {
	HasLikelyHeaders   bool               `json:"hasLikelyHeaders"`
	HeaderRow          int                `json:"headerRow"`
	TitleCol           int                `json:"titleCol"`
	PriceWithTaxCol    *int               `json:"priceWithTaxCol,omitempty"`
	PriceWithoutTaxCol *int               `json:"priceWithoutTaxCol,omitempty"`
	UnitCol            *int               `json:"unitCol,omitempty"`
	SkuCol             *int               `json:"skuCol,omitempty"`
	RowIndexOffset     int                `json:"rowIndexOffset"`
	DataStartRow       int                `json:"dataStartRow"`
	DefaultUnit        *string            `json:"defaultUnit,omitempty"`
	Candidates         []HeaderCandidate  `json:"candidates"`
	Columns            []ColumnAssignment `json:"columns"`
	Rationale          []string           `json:"rationale"`
}

type WarningCode string

const (
	WarnLowConfidence WarningCode = "low_confidence"
	WarnNoHeader      WarningCode = "no_header"
	WarnRowParse      WarningCode = "row_parse"
	WarnCSVParse      WarningCode = "csv_parse"
	WarnAIStructured  WarningCode = "ai_structured"
	WarnTruncated     WarningCode = "truncated"
)

type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

type Source struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Format      string `json:"format"`
	Family      string `json:"family"`
	Size        int    `json:"size"`
}

// ParseResult — то, что уходит на превью: позиции + предупреждения. Ничего не сохраняется.
type ParseResult struct {
	Items    []NormalizedItem `json:"items"`
	Warnings []string         `json:"warnings"`
	Details  []Warning        `json:"details"`
	Layout   *Layout          `json:"layout,omitempty"`
	Source   Source           `json:"source"`
	UsedAI   bool             `json:"usedAI"`
}

func (r *ParseResult) Warn(code WarningCode, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	r.Details = append(r.Details, Warning{Code: code, Message: msg})
}

func (r *ParseResult) HasWarning(code WarningCode) bool {
	for _, w := range r.Details {
		if w.Code == code {
			return true
		}
	}
	return false
}

// ErrNoRowsExtracted — файл прочитан, но ни одной позиции из него не получилось.
var ErrNoRowsExtracted = errors.New("no rows extracted")
