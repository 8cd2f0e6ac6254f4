package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pricelist-service/internal/compare/model"
)

const exportSheet = "Сравнение"

// ExportXLSX выгружает представление в книгу: строка на позицию, колонка на поставщика,
// выигрышные ячейки подсвечены, внизу итоги.
func ExportXLSX(v model.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, err
	}
	winStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Font:   &excelize.Font{Color: "#006100"},
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	if err != nil {
		return nil, err
	}

	headers := []string{"№", "Наименование", "Кол-во", "Ед."}
	for _, s := range v.Suppliers {
		name := s.SupplierName
		if name == "" {
			name = s.SupplierID
		}
		headers = append(headers, name)
	}
	headers = append(headers, "Мин. цена", "Сумма")

	set := func(col, row int, val any, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, val); err != nil {
			return err
		}
		if style != 0 {
			return f.SetCellStyle(exportSheet, cell, cell, style)
		}
		return nil
	}

	for i, h := range headers {
		if err := set(i+1, 1, h, headerStyle); err != nil {
			return nil, err
		}
	}

	minCol := 5 + len(v.Suppliers)
	for i, r := range v.Rows {
		row := i + 2
		cells := []any{i + 1, r.Requested.Title, r.Requested.Quantity, r.Requested.Unit}
		for c, val := range cells {
			if err := set(c+1, row, val, 0); err != nil {
				return nil, err
			}
		}
		for j, s := range v.Suppliers {
			o := r.Offers[s.SupplierID]
			if o == nil {
				continue
			}
			style := moneyStyle
			if o.Winning {
				style = winStyle
			}
			if err := set(5+j, row, o.Price, style); err != nil {
				return nil, err
			}
			if o.Source == model.SourceAnalogue {
				cell, _ := excelize.CoordinatesToCellName(5+j, row)
				_ = f.AddComment(exportSheet, excelize.Comment{
					Cell:   cell,
					Author: "pricelist",
					Text:   "Аналог: " + o.Title,
				})
			}
		}
		if r.Min != nil {
			if err := set(minCol, row, *r.Min, moneyStyle); err != nil {
				return nil, err
			}
			if err := set(minCol+1, row, *r.MinTotal, moneyStyle); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(v.Rows) + 2
	if err := set(2, totalRow, "Итого", totalStyle); err != nil {
		return nil, err
	}
	for j, s := range v.Suppliers {
		if err := set(5+j, totalRow, v.SupplierTotals[s.SupplierID], totalStyle); err != nil {
			return nil, err
		}
	}
	if err := set(minCol+1, totalRow, v.GrandTotal, totalStyle); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(exportSheet, "B", "B", 45)
	last, _ := excelize.ColumnNumberToName(minCol + 1)
	_ = f.SetColWidth(exportSheet, "E", last, 14)
	_ = f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
