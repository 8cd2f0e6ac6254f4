package fileio

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Format
		family      Family
	}{
		{"xlsx by ext", "price.XLSX", "", FormatXLSX, FamilyTabular},
		{"xls by ext", "1c.xls", "", FormatXLS, FamilyTabular},
		{"csv by ext", "list.csv", "application/octet-stream", FormatCSV, FamilyTabular},
		{"html by ext", "export.htm", "", FormatHTML, FamilyTabular},
		{"pdf by ext", "offer.pdf", "", FormatPDF, FamilyDocument},
		{"docx by ext", "offer.docx", "", FormatDOCX, FamilyDocument},
		{"csv by content type", "upload", "text/csv; charset=utf-8", FormatCSV, FamilyTabular},
		{"pdf by content type", "blob", "application/pdf", FormatPDF, FamilyDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.filename, tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.family, got.Family())
		})
	}

	_, err := Detect("photo.png", "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_SizeCheckedFirst(t *testing.T) {
	_, err := Read(make([]byte, 11), "photo.png", "", 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(nil, "list.csv", "", 0)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Read([]byte(";;\n;;\n"), "list.csv", "", 0)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestRead_CSVSemicolonUTF8(t *testing.T) {
	data := "\xef\xbb\xbfНаименование;Ед.;Цена\n\"Молоко 3,2%\";шт;\"85,50\"\nКефир;шт;70\n"
	ex, err := Read([]byte(data), "list.csv", "", 0)
	require.NoError(t, err)

	assert.Equal(t, FamilyTabular, ex.Family)
	require.Len(t, ex.Grid, 3)
	assert.Equal(t, []string{"Наименование", "Ед.", "Цена"}, ex.Grid[0])
	assert.Equal(t, []string{"Молоко 3,2%", "шт", "85,50"}, ex.Grid[1])
}

func TestRead_CSVWindows1251(t *testing.T) {
	text := "Наименование товара;Единица измерения;Цена с НДС\n" +
		"Молоко пастеризованное отборное;шт;85,50\n" +
		"Сметана фермерская двадцатипроцентная;шт;120,00\n" +
		"Творог обезжиренный весовой;кг;410,00\n" +
		"Масло сливочное крестьянское;шт;230,00\n"
	enc, err := charmap.Windows1251.NewEncoder().String(text)
	require.NoError(t, err)

	ex, err := Read([]byte(enc), "1c.csv", "", 0)
	require.NoError(t, err)
	require.Len(t, ex.Grid, 5)
	assert.Equal(t, "Наименование товара", ex.Grid[0][0])
	assert.Equal(t, "Творог обезжиренный весовой", ex.Grid[3][0])
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"№", "Наименование", "Цена"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "Гвозди 100мм", 250.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "Шурупы"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ex, err := Read(buf.Bytes(), "price.xlsx", "", 0)
	require.NoError(t, err)
	require.Len(t, ex.Grid, 3)
	assert.Equal(t, []string{"2", "Шурупы", ""}, ex.Grid[2], "rows are padded to the widest one")
	assert.Equal(t, "250.5", ex.Grid[1][2])
}

func TestRead_HTMLTable(t *testing.T) {
	page := `<html><body><p>Прайс</p><table>
<tr><th>Наименование</th><th colspan="2">Цена</th></tr>
<tr><td>Цемент М500</td><td>450</td><td>руб</td></tr>
</table></body></html>`
	ex, err := Read([]byte(page), "export.html", "", 0)
	require.NoError(t, err)
	require.Len(t, ex.Grid, 2)
	assert.Equal(t, []string{"Наименование", "Цена", ""}, ex.Grid[0])
	assert.Equal(t, []string{"Цемент М500", "450", "руб"}, ex.Grid[1])
}

func TestRead_HTMLNestedTableRowsNotDuplicated(t *testing.T) {
	page := `<table>
<tr><th>Наименование</th><th>Цена</th></tr>
<tr><td>Кабель ВВГ <table><tr><td>3x2,5</td></tr><tr><td>бухта 100 м</td></tr></table></td><td>95</td></tr>
<tr><td>Песок</td><td>1200</td></tr>
</table>`
	ex, err := Read([]byte(page), "export.htm", "", 0)
	require.NoError(t, err)
	require.Len(t, ex.Grid, 3)
	assert.True(t, strings.HasPrefix(ex.Grid[1][0], "Кабель ВВГ 3x2,5"), ex.Grid[1][0])
	assert.Equal(t, "95", ex.Grid[1][1])
	assert.Equal(t, []string{"Песок", "1200"}, ex.Grid[2])
}

func TestRead_DOCX(t *testing.T) {
	const body = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Коммерческое предложение</w:t></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Цемент</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>450</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body></w:document>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	ex, err := Read(buf.Bytes(), "offer.docx", "", 0)
	require.NoError(t, err)
	assert.Equal(t, FamilyDocument, ex.Family)
	assert.Contains(t, ex.Text, "Коммерческое предложение\n")
	assert.Contains(t, ex.Text, "Цемент \t450 \t\n")
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read([]byte("GIF89a"), "anim.gif", "image/gif", 0)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
