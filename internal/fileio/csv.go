package fileio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const maxCSVErrors = 100

var cyrillicCharsets = map[string]encoding.Encoding{
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"koi8-r":       charmap.KOI8R,
	"iso-8859-5":   charmap.ISO8859_5,
	"ibm866":       charmap.CodePage866,
}

// decodeText приводит байты к UTF-8. Валидный UTF-8 (с BOM или без) отдаём как есть,
// иначе спрашиваем chardet и по умолчанию считаем, что это cp1251 (выгрузки 1С).
func decodeText(b []byte) (string, string) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if utf8.Valid(b) {
		return string(b), "utf-8"
	}

	cs := "windows-1251"
	if results, err := chardet.NewTextDetector().DetectAll(b); err == nil {
		for _, r := range results {
			name := strings.ToLower(r.Charset)
			if _, ok := cyrillicCharsets[name]; ok {
				cs = name
				break
			}
		}
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(b), cyrillicCharsets[cs].NewDecoder()))
	if err != nil {
		return string(b), "utf-8"
	}
	return string(out), cs
}

// readCSV: автоопределение кодировки и разделителя, ошибки отдельных записей — в предупреждения.
func readCSV(data []byte) ([][]string, []string, error) {
	text, _ := decodeText(data)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		rows     [][]string
		warnings []string
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, warnings, err
			}
			warnings = append(warnings, fmt.Sprintf("csv line %d: %v", pe.Line, pe.Err))
			if len(warnings) >= maxCSVErrors {
				warnings = append(warnings, "csv: too many malformed records, reading stopped")
				break
			}
			if rec == nil {
				continue
			}
		}
		for i := range rec {
			rec[i] = normalizeCell(rec[i])
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, warnings, ErrEmptyFile
	}
	return rows, warnings, nil
}

// sniffDelimiter смотрит на первые строки и выбирает ; , или TAB —
// тот, что встречается (вне кавычек) в наибольшем числе строк.
func sniffDelimiter(text string) rune {
	lines := strings.SplitN(text, "\n", 21)
	if len(lines) > 20 {
		lines = lines[:20]
	}
	best, bestLines, bestTotal := ',', 0, 0
	for _, d := range []rune{';', ',', '\t'} {
		withD, total := 0, 0
		for _, ln := range lines {
			n := countOutsideQuotes(ln, d)
			if n > 0 {
				withD++
				total += n
			}
		}
		if withD > bestLines || (withD == bestLines && total > bestTotal) {
			best, bestLines, bestTotal = d, withD, total
		}
	}
	return best
}

func countOutsideQuotes(line string, d rune) int {
	n, inQuote := 0, false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == d && !inQuote:
			n++
		}
	}
	return n
}
