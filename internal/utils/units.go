package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// Канонические единицы измерения. Порядок важен: первая подходящая побеждает.
var unitTable = []struct {
	canon string
	re    *regexp.Regexp
}{
	{"шт", regexp.MustCompile(`^(шт|штук[аи]?|штука|pcs|pc|ea|each)$`)},
	{"кг", regexp.MustCompile(`^(кг|килограмм\p{L}*|kg)$`)},
	{"г", regexp.MustCompile(`^(г|гр|грамм\p{L}*|g)$`)},
	{"т", regexp.MustCompile(`^(т|тн|тонн\p{L}*)$`)},
	{"мл", regexp.MustCompile(`^(мл|ml)$`)},
	{"л", regexp.MustCompile(`^(л|литр\p{L}*|l|ltr)$`)},
	{"м2", regexp.MustCompile(`^(м2|м²|кв\.?м|m2)$`)},
	{"м3", regexp.MustCompile(`^(м3|м³|куб\.?м|m3)$`)},
	{"пм", regexp.MustCompile(`^(п\.?м|пог\.?м)$`)},
	{"м", regexp.MustCompile(`^(м|метр\p{L}*|m)$`)},
	{"уп", regexp.MustCompile(`^(уп|упак\p{L}*|pack|pkg)$`)},
	{"компл", regexp.MustCompile(`^(компл|комплект\p{L}*|set)$`)},
	{"кор", regexp.MustCompile(`^(кор|коробк\p{L}*|box)$`)},
	{"рул", regexp.MustCompile(`^(рул|рулон\p{L}*|roll)$`)},
	{"пара", regexp.MustCompile(`^(пар[аы]?|pair)$`)},
	{"лист", regexp.MustCompile(`^(лист\p{L}*|sheet)$`)},
	{"бут", regexp.MustCompile(`^(бут|бутыл\p{L}*|bottle)$`)},
	{"меш", regexp.MustCompile(`^(меш|мешок|мешк\p{L}*|bag)$`)},
}

// CanonicalUnit распознаёт ячейку/токен целиком: "Шт." -> "шт", "кв. м" -> "м2".
func CanonicalUnit(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), "")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "", false
	}
	for _, u := range unitTable {
		if u.re.MatchString(s) {
			return u.canon, true
		}
	}
	return "", false
}

// FindUnitToken ищет единицу в свободном тексте ("Цены указаны за 1 кг, с НДС").
// Однобуквенные токены ("г", "м") в свободном тексте слишком шумные ("г. Москва"),
// их берём только сразу после числа или предлога "за".
func FindUnitToken(text string) (string, bool) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '²' && r != '³'
	})
	for i, tok := range tokens {
		canon, ok := CanonicalUnit(tok)
		if !ok {
			continue
		}
		if len([]rune(tok)) == 1 {
			if i == 0 {
				continue
			}
			prev := tokens[i-1]
			if prev != "за" && !IsNumeric(prev) {
				continue
			}
		}
		return canon, true
	}
	return "", false
}
