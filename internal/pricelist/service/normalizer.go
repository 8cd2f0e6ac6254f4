package service

import (
	"strings"

	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/utils"
)

// RowStats — сводка прохода по строкам, для предупреждений и логов.
type RowStats struct {
	Rows          int `json:"rows"`
	Skipped       int `json:"skipped"`
	Unpriced      int `json:"unpriced"`
	BadPriceCells int `json:"badPriceCells"`
	Recovered     int `json:"recovered"`
}

// NormalizeRows проходит строки данных по Layout и собирает позиции.
// Ошибок не бывает: неразобранная ячейка превращается в nil.
func NormalizeRows(grid [][]string, lay model.Layout) ([]model.NormalizedItem, RowStats) {
	var (
		items []model.NormalizedItem
		st    RowStats
	)
	for i := lay.DataStartRow; i < len(grid); i++ {
		row := grid[i]
		st.Rows++
		if nonEmptyCount(row) < 2 {
			st.Skipped++
			continue
		}

		title := strings.Join(strings.Fields(cellAt(row, lay.TitleCol)), " ")
		if title == "" || isJunkTitle(title) || looksLikeHeaderRow(row, title, lay) {
			st.Skipped++
			continue
		}

		withTax, bad1 := priceAt(row, lay.PriceWithTaxCol)
		withoutTax, bad2 := priceAt(row, lay.PriceWithoutTaxCol)
		if bad1 {
			st.BadPriceCells++
		}
		if bad2 {
			st.BadPriceCells++
		}
		if withTax == nil && withoutTax == nil {
			if p := probeFallback(row, lay); p != nil {
				withTax = p
				st.Recovered++
			}
		}

		it := model.NewItem(title, withTax, withoutTax, resolveUnit(row, lay), skuAt(row, lay.SkuCol))
		if it.Price == nil {
			st.Unpriced++
		}
		items = append(items, it)
	}
	return items, st
}

// isJunkTitle: короче 3 символов или чистое число — артефакт съехавших/объединённых ячеек.
func isJunkTitle(title string) bool {
	if len([]rune(title)) < 3 {
		return true
	}
	if utils.IsNumeric(title) {
		return true
	}
	return rxTotalRow.MatchString(normHeader(title))
}

// looksLikeHeaderRow — повтор шапки посреди прайса (печатные формы повторяют её на каждой странице).
// Колонку единиц не смотрим: "ед." там значение, а не подпись.
func looksLikeHeaderRow(row []string, title string, lay model.Layout) bool {
	if k, _ := scoreCell(title); k == kindTitle {
		return true
	}
	for c, cell := range row {
		if c == lay.TitleCol || (lay.UnitCol != nil && c == *lay.UnitCol) {
			continue
		}
		if isCaption(cell) {
			return true
		}
	}
	return false
}

// priceAt возвращает цену и признак "ячейка непустая, но не разобралась".
func priceAt(row []string, col *int) (*float64, bool) {
	if col == nil {
		return nil, false
	}
	s := cellAt(row, *col)
	if s == "" {
		return nil, false
	}
	p := utils.ParsePrice(s)
	return p, p == nil
}

// probeFallback: объявленные колонки цен, затем 1-3 колонки правее наименования.
// Чинит случаи, когда классификатор промахнулся с индексом колонки.
func probeFallback(row []string, lay model.Layout) *float64 {
	var order []int
	if lay.PriceWithTaxCol != nil {
		order = append(order, *lay.PriceWithTaxCol)
	}
	if lay.PriceWithoutTaxCol != nil {
		order = append(order, *lay.PriceWithoutTaxCol)
	}
	order = append(order, lay.TitleCol+1, lay.TitleCol+2, lay.TitleCol+3)

	seen := make(map[int]bool, len(order))
	for _, c := range order {
		if seen[c] || c == lay.TitleCol || isCol(lay.SkuCol, c) || isCol(lay.UnitCol, c) {
			continue
		}
		seen[c] = true
		if p := utils.ParsePrice(cellAt(row, c)); p != nil {
			return p
		}
	}
	return nil
}

func resolveUnit(row []string, lay model.Layout) *string {
	if lay.UnitCol != nil {
		if s := cellAt(row, *lay.UnitCol); s != "" {
			if canon, ok := utils.CanonicalUnit(s); ok {
				return &canon
			}
			return &s
		}
	}
	if lay.DefaultUnit != nil {
		u := *lay.DefaultUnit
		return &u
	}
	return nil
}

func skuAt(row []string, col *int) *string {
	if col == nil {
		return nil
	}
	if s := cellAt(row, *col); s != "" {
		return &s
	}
	return nil
}

func isCol(p *int, c int) bool { return p != nil && *p == c }
