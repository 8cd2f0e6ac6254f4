package fileio

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// readHTML берёт первую таблицу страницы (выгрузки "Сохранить как HTML" из 1С/Excel).
func readHTML(data []byte) ([][]string, error) {
	text, _ := decodeText(data)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("html: no <table> found")
	}

	// строки вложенных таблиц принадлежат ячейке, а не сетке
	own := func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	}

	var rows [][]string
	table.Find("tr").FilterFunction(own).Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, normalizeCell(strings.Join(strings.Fields(cell.Text()), " ")))
			if span, err := strconv.Atoi(cell.AttrOr("colspan", "1")); err == nil {
				for k := 1; k < span && k < 64; k++ {
					row = append(row, "")
				}
			}
		})
		rows = append(rows, row)
	})
	return rows, nil
}
