package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxNumber = regexp.MustCompile(`^[-+]?\d+(\.\d+)?$`)

	// пробелы всех видов (NBSP, NNBSP, thin space) выкидываем целиком
	spaceStrip = strings.NewReplacer(" ", "", "\t", "", "\u00a0", "", "\u202f", "", "\u2009", "", "'", "")

	// валютные хвосты/префиксы: "1 200 руб.", "₽ 350", "$12.5"
	currencyStrip = strings.NewReplacer("руб.", "", "руб", "", "р.", "", "₽", "", "rub", "", "$", "", "€", "", "usd", "", "eur", "")
)

// ParseFloatRU парсит "1 234,50", "197 ,00", "2 345,6" (NBSP/NNBSP), "1,234.50" и т.п.
// В отличие от "жадного" варианта, строка с буквами/мусором числом не считается.
func ParseFloatRU(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	s = spaceStrip.Replace(s)
	s = currencyStrip.Replace(s)
	s = normalizeSeparators(s)
	if !rxNumber.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// ParsePrice — то же самое, но с nil вместо ошибки: пустая/кривая ячейка = нет цены.
func ParsePrice(s string) *float64 {
	f, ok := ParseFloatRU(s)
	if !ok {
		return nil
	}
	return &f
}

// IsNumeric — строка целиком является числом ("42", "1 200,00").
func IsNumeric(s string) bool {
	_, ok := ParseFloatRU(s)
	return ok
}

// normalizeSeparators приводит десятичный разделитель к точке.
// "1.234,5" -> "1234.5", "1,234.5" -> "1234.5", "12,5" -> "12.5", "1,234,567" -> "1234567".
func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}
