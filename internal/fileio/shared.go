package fileio

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

type Family string

const (
	FamilyTabular  Family = "tabular"
	FamilyDocument Family = "document"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrEmptyFile         = errors.New("empty file")
)

// DefaultMaxBytes — потолок размера загрузки (20 МБ).
const DefaultMaxBytes int64 = 20 << 20

var byExt = map[string]Format{
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".xls":  FormatXLS,
	".csv":  FormatCSV,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".txt":  FormatTXT,
}

var byContentType = map[string]Format{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       FormatXLSX,
	"application/vnd.ms-excel.sheet.macroenabled.12":                          FormatXLSX,
	"application/vnd.ms-excel":                                                FormatXLS,
	"text/csv":                                                                FormatCSV,
	"application/csv":                                                         FormatCSV,
	"text/html":                                                               FormatHTML,
	"application/pdf":                                                         FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"text/plain":                                                              FormatTXT,
}

func (f Format) Family() Family {
	switch f {
	case FormatPDF, FormatDOCX, FormatTXT:
		return FamilyDocument
	default:
		return FamilyTabular
	}
}

// Extracted — результат извлечения: либо сетка ячеек, либо сплошной текст.
type Extracted struct {
	Format   Format
	Family   Family
	Grid     [][]string
	Text     string
	Warnings []string
}

// Detect выбирает формат по расширению, а если его нет/не знаем — по content-type.
func Detect(filename, contentType string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := byExt[ext]; ok {
		return f, nil
	}
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := byContentType[strings.ToLower(mt)]; ok {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, contentType)
}

// Read — точка входа: проверка размера, выбор извлекателя, извлечение.
// maxBytes <= 0 означает DefaultMaxBytes.
func Read(data []byte, filename, contentType string, maxBytes int64) (*Extracted, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(data), maxBytes)
	}
	format, err := Detect(filename, contentType)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	out := &Extracted{Format: format, Family: format.Family()}
	switch format {
	case FormatXLSX:
		out.Grid, err = readXLSX(data)
	case FormatXLS:
		out.Grid, err = readXLS(data)
	case FormatCSV:
		out.Grid, out.Warnings, err = readCSV(data)
	case FormatHTML:
		out.Grid, err = readHTML(data)
	case FormatPDF:
		out.Text, err = readPDF(data)
	case FormatDOCX:
		out.Text, err = readDOCX(data)
	case FormatTXT:
		out.Text = readTXT(data)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	if out.Family == FamilyTabular {
		out.Grid = squareGrid(out.Grid)
		if isEmptyGrid(out.Grid) {
			return nil, ErrEmptyFile
		}
	} else if strings.TrimSpace(out.Text) == "" {
		return nil, ErrEmptyFile
	}
	return out, nil
}

// squareGrid дотягивает все строки до ширины самой широкой, чтобы индексы колонок были стабильны.
func squareGrid(rows [][]string) [][]string {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	for i, r := range rows {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			rows[i] = padded
		}
	}
	return rows
}

func isEmptyGrid(rows [][]string) bool {
	for _, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				return false
			}
		}
	}
	return true
}

// normalizeCell: NBSP -> пробел, обрезка по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00a0", " ", "\u202f", " ", "\r", "").Replace(s)
	return strings.TrimSpace(s)
}
