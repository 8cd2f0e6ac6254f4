package service

import (
	"fmt"
	"strings"

	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/utils"
)

const (
	headerScanRows = 30 // сколько строк сверху смотрим в поисках шапки
	unitProbeRows  = 20 // сколько строк данных проверяем на наличие единиц
)

// Classify находит строку заголовков и раздаёт колонкам роли.
// Чистая функция: одна и та же сетка -> один и тот же Layout (вместе с объяснением).
func Classify(grid [][]string) model.Layout {
	lay := model.Layout{TitleCol: 0}

	headerRow, candidates, reason := findHeaderRow(grid)
	lay.Candidates = candidates

	if headerRow < 0 {
		lay.HasLikelyHeaders = false
		lay.HeaderRow = 0
		lay.DataStartRow = 0
		lay.Rationale = append(lay.Rationale, reason)
		positionalRoles(grid, &lay)
		inferDefaultUnit(grid, &lay)
		return lay
	}

	lay.HasLikelyHeaders = true
	lay.HeaderRow = headerRow
	lay.DataStartRow = headerRow + 1
	lay.Rationale = append(lay.Rationale, reason)
	assignRoles(grid[headerRow], &lay)
	inferDefaultUnit(grid, &lay)
	return lay
}

// findHeaderRow: кандидат — строка с >=3 непустыми и >=2 нечисловыми ячейками.
// Совпадение со словарём наименования — сильный сигнал, сразу выигрывает.
// Иначе берём первого кандидата; нет кандидатов — -1.
func findHeaderRow(grid [][]string) (int, []model.HeaderCandidate, string) {
	var (
		candidates []model.HeaderCandidate
		firstWeak  = -1
	)
	limit := min(headerScanRows, len(grid))
	for i := 0; i < limit; i++ {
		c := model.HeaderCandidate{Row: i}
		titleCell := ""
		for _, cell := range grid[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			c.NonEmpty++
			if !utils.IsNumeric(cell) {
				c.TextCells++
			}
			if k, _ := scoreCell(cell); k != kindNone {
				c.Matched++
				if k == kindTitle && titleCell == "" {
					titleCell = cell
				}
			}
		}
		if c.NonEmpty < 3 || c.TextCells < 2 {
			continue
		}
		if titleCell != "" {
			c.Strong = true
			c.Reason = fmt.Sprintf("cell %q matches title vocabulary", titleCell)
			candidates = append(candidates, c)
			return i, candidates, fmt.Sprintf("header row %d: strong signal, %s", i, c.Reason)
		}
		c.Reason = fmt.Sprintf("%d non-empty cells, %d text cells, %d vocabulary hits", c.NonEmpty, c.TextCells, c.Matched)
		candidates = append(candidates, c)
		if firstWeak < 0 {
			firstWeak = i
		}
	}
	if firstWeak >= 0 {
		return firstWeak, candidates, fmt.Sprintf("header row %d: weak signal, first candidate without title vocabulary", firstWeak)
	}
	return -1, candidates, fmt.Sprintf("no header candidate in first %d rows, positional defaults used", limit)
}

// assignRoles раздаёт роли по словарю. Цена с/без НДС важнее "просто цены";
// "просто цена" используется, только если налоговых колонок нет.
func assignRoles(header []string, lay *model.Layout) {
	if len(header) > 0 {
		if k, _ := scoreCell(header[0]); k == kindRowIndex {
			lay.RowIndexOffset = 1
			lay.Rationale = append(lay.Rationale, fmt.Sprintf("column 0 %q is a row index, columns shifted by one", header[0]))
		}
	}

	var (
		title, withTax, withoutTax, unit, sku *int
		generic                               []int
		scores                                = make([]int, len(header))
	)
	first := func(dst **int, c int) {
		if *dst == nil {
			v := c
			*dst = &v
		}
	}
	for c := lay.RowIndexOffset; c < len(header); c++ {
		k, score := scoreCell(header[c])
		scores[c] = score
		switch k {
		case kindTitle:
			first(&title, c)
		case kindPriceWithTax:
			first(&withTax, c)
		case kindPriceWithoutTax:
			first(&withoutTax, c)
		case kindPrice:
			generic = append(generic, c)
		case kindUnit:
			first(&unit, c)
		case kindSku:
			first(&sku, c)
		}
	}

	if withTax == nil && withoutTax == nil && len(generic) > 0 {
		v := generic[0]
		withTax = &v
		lay.Rationale = append(lay.Rationale, fmt.Sprintf("column %d %q: untaxed-qualified price treated as price with tax", v, header[v]))
	}

	taken := func(c int) bool {
		for _, p := range []*int{withTax, withoutTax, unit, sku} {
			if p != nil && *p == c {
				return true
			}
		}
		return false
	}
	if title != nil {
		lay.TitleCol = *title
	} else {
		lay.TitleCol = lay.RowIndexOffset
		for c := lay.RowIndexOffset; c < len(header); c++ {
			if !taken(c) {
				lay.TitleCol = c
				break
			}
		}
		lay.Rationale = append(lay.Rationale, fmt.Sprintf("no title column in header, column %d used positionally", lay.TitleCol))
	}
	lay.PriceWithTaxCol, lay.PriceWithoutTaxCol = withTax, withoutTax
	lay.UnitCol, lay.SkuCol = unit, sku

	lay.Columns = make([]model.ColumnAssignment, len(header))
	for c, h := range header {
		role := model.RoleUnassigned
		switch {
		case c < lay.RowIndexOffset:
			role = model.RoleRowIndex
		case c == lay.TitleCol:
			role = model.RoleTitle
		case withTax != nil && c == *withTax:
			role = model.RolePriceWithTax
		case withoutTax != nil && c == *withoutTax:
			role = model.RolePriceWithoutTax
		case unit != nil && c == *unit:
			role = model.RoleUnit
		case sku != nil && c == *sku:
			role = model.RoleSku
		}
		lay.Columns[c] = model.ColumnAssignment{Col: c, Header: h, Role: role, Score: scores[c]}
	}
}

// positionalRoles — шапки нет: наименование в первой колонке, если только
// первая колонка не сплошь порядковые номера.
func positionalRoles(grid [][]string, lay *model.Layout) {
	rows, numeric, textNext := 0, 0, 0
	for i := 0; i < len(grid) && rows < headerScanRows; i++ {
		r := grid[i]
		if nonEmptyCount(r) < 2 || len(r) < 2 {
			continue
		}
		rows++
		if utils.IsNumeric(r[0]) {
			numeric++
		}
		if s := strings.TrimSpace(r[1]); s != "" && !utils.IsNumeric(s) {
			textNext++
		}
	}
	if rows > 0 && numeric*5 >= rows*4 && textNext*2 >= rows {
		lay.RowIndexOffset = 1
		lay.Rationale = append(lay.Rationale, "column 0 holds running numbers, title taken from column 1")
	}
	lay.TitleCol = lay.RowIndexOffset
}

// inferDefaultUnit: если в колонке единиц ничего узнаваемого нет (или колонки нет вовсе),
// ищем единицу в строке-подписи над шапкой и в соседних с колонкой единиц ячейках.
func inferDefaultUnit(grid [][]string, lay *model.Layout) {
	end := min(lay.DataStartRow+unitProbeRows, len(grid))

	if lay.UnitCol != nil {
		for i := lay.DataStartRow; i < end; i++ {
			if _, ok := utils.CanonicalUnit(cellAt(grid[i], *lay.UnitCol)); ok {
				return
			}
		}
	}

	set := func(u, where string) {
		lay.DefaultUnit = &u
		lay.Rationale = append(lay.Rationale, fmt.Sprintf("default unit %q taken from %s", u, where))
	}

	if lay.HasLikelyHeaders && lay.UnitCol != nil {
		if u, ok := utils.FindUnitToken(cellAt(grid[lay.HeaderRow], *lay.UnitCol)); ok {
			set(u, "unit column caption")
			return
		}
	}
	if lay.HasLikelyHeaders && lay.HeaderRow > 0 {
		if u, ok := utils.FindUnitToken(strings.Join(grid[lay.HeaderRow-1], " ")); ok {
			set(u, fmt.Sprintf("caption row %d", lay.HeaderRow-1))
			return
		}
	}
	if lay.UnitCol == nil {
		return
	}
	for _, c := range []int{*lay.UnitCol - 1, *lay.UnitCol + 1} {
		if c < 0 {
			continue
		}
		for i := lay.DataStartRow; i < end; i++ {
			if u, ok := utils.CanonicalUnit(cellAt(grid[i], c)); ok {
				set(u, fmt.Sprintf("column %d adjacent to unit column", c))
				return
			}
		}
	}
}

func cellAt(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func nonEmptyCount(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
