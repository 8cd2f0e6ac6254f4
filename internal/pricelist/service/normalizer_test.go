package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricelist-service/internal/pricelist/model"
)

func ip(v int) *int { return &v }

func TestNormalizeRows_SkipsJunkHeadersAndTotals(t *testing.T) {
	grid := [][]string{
		{"Наименование", "Ед.", "Цена"},
		{"Цемент М500", "Шт.", "450"},
		{"42", "", "100"},
		{"Наименование", "Ед.", "Цена"},
		{"Итого", "", "550"},
		{"Кирпич", "", ""},
		{"", "", ""},
	}
	lay := Classify(grid)
	items, st := NormalizeRows(grid, lay)

	require.Len(t, items, 1)
	assert.Equal(t, "Цемент М500", items[0].Title)
	require.NotNil(t, items[0].Unit)
	assert.Equal(t, "шт", *items[0].Unit)
	assert.Equal(t, 6, st.Rows)
	assert.Equal(t, 5, st.Skipped)
}

func TestNormalizeRows_PriceResolution(t *testing.T) {
	grid := [][]string{
		{"Наименование", "Цена с НДС", "Цена без НДС", "Артикул"},
		{"Плитка", "1 234,50", "1 028,75", "PL-1"},
		{"Затирка", "", "300", "ZT-9"},
		{"Грунт", "—", "", ""},
	}
	items, st := NormalizeRows(grid, Classify(grid))
	require.Len(t, items, 3)

	assert.Equal(t, 1234.5, *items[0].Price)
	assert.Equal(t, 1028.75, *items[0].PriceWithoutTax)
	assert.Equal(t, "PL-1", *items[0].Sku)

	assert.Nil(t, items[1].PriceWithTax)
	assert.Equal(t, 300.0, *items[1].Price, "price falls back to price without tax")

	assert.Nil(t, items[2].Price)
	assert.Nil(t, items[2].Sku)
	assert.Equal(t, 1, st.BadPriceCells)
	assert.Equal(t, 1, st.Unpriced)
}

func TestNormalizeRows_FallbackProbing(t *testing.T) {
	// Классификатор ошибся: "цена" указывает на колонку с примечанием.
	lay := model.Layout{TitleCol: 0, PriceWithTaxCol: ip(3), DataStartRow: 0}
	grid := [][]string{
		{"Саморез 4,2х75", "уп", "560", "под заказ"},
	}
	items, st := NormalizeRows(grid, lay)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Price)
	assert.Equal(t, 560.0, *items[0].Price)
	assert.Equal(t, 1, st.Recovered)
}

func TestNormalizeRows_FallbackSkipsSkuAndUnit(t *testing.T) {
	lay := model.Layout{TitleCol: 0, SkuCol: ip(1), DataStartRow: 0}
	grid := [][]string{
		{"Шуруп", "100500", "", "12"},
	}
	items, _ := NormalizeRows(grid, lay)
	require.Len(t, items, 1)
	assert.Equal(t, 12.0, *items[0].Price)
}

func TestNormalizeRows_UnitKeptWhenUnknown(t *testing.T) {
	lay := model.Layout{TitleCol: 0, UnitCol: ip(1), PriceWithTaxCol: ip(2), DefaultUnit: strp("кг")}
	grid := [][]string{
		{"Краска", "банка 3 л", "900"},
		{"Лак", "", "700"},
	}
	items, _ := NormalizeRows(grid, lay)
	require.Len(t, items, 2)
	assert.Equal(t, "банка 3 л", *items[0].Unit)
	assert.Equal(t, "кг", *items[1].Unit)
}

func strp(s string) *string { return &s }

func TestNormalizeRows_DataCellsResemblingCaptionsKept(t *testing.T) {
	grid := [][]string{
		{"Наименование", "Ед.", "Цена", "Примечание"},
		{"Цемент М500", "меш", "450", ""},
		{"Услуга доставки", "ед.", "1500", ""},
		{"Кабель ВВГ", "м", "Цена договорная", ""},
		{"Наименование", "Ед.", "Цена", "Примечание"},
		{"Песок", "т", "1200", "Цена"},
	}
	items, st := NormalizeRows(grid, Classify(grid))

	require.Len(t, items, 3)
	assert.Equal(t, "Услуга доставки", items[1].Title)
	assert.Equal(t, "ед.", *items[1].Unit)
	assert.Equal(t, 1500.0, *items[1].Price)
	assert.Equal(t, "Кабель ВВГ", items[2].Title)
	assert.Nil(t, items[2].Price)
	assert.Equal(t, 1, st.BadPriceCells)
	// повтор шапки и строка с подписью "Цена" в чужой колонке
	assert.Equal(t, 2, st.Skipped)
}

func TestIsCaption(t *testing.T) {
	for _, s := range []string{"Цена", "Цена, руб.", "Цена с НДС", "Ед. изм.", "Наименование товара", "Артикул", "№ п/п"} {
		assert.True(t, isCaption(s), s)
	}
	for _, s := range []string{"Цена договорная", "Стоимость по запросу", "Товарный бетон", "меш", ""} {
		assert.False(t, isCaption(s), s)
	}
}
