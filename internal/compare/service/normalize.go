package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// TitleKey — ключ точного сопоставления: trim, NFC, case-fold, схлопнутые пробелы.
// Ничего не вырезает и не переставляет: "Цемент М500" и "цемент  м500" совпадают,
// "Цемент М-500" — уже нет.
func TitleKey(s string) string {
	s = norm.NFC.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Латиница→кириллица (визуальные двойники)
var lookalikes = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н', 'K': 'К', 'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т', 'Y': 'У',
	'a': 'а', 'c': 'с', 'e': 'е', 'o': 'о', 'p': 'р', 'y': 'у',
}

// 0,5 → 0.5
var decComma = regexp.MustCompile(`(\d),(\d)`)

const unitWord = `мл|л|кг|г|мг|мм|см|м|шт|%`

// "48 мм" → "48мм", "3.2 %" → "3.2%"
var reAttachNumUnit = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)(\s+)(` + unitWord + `)([^\p{L}]|$)`)

// склеенные пары "48мм", "3.2%"
var reNumUnitFind = regexp.MustCompile(`\d+(?:\.\d+)?(?:` + unitWord + `)`)

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s.%]+`)

// analogueKey — "мягкий" ключ для подсказок аналогов, не для сопоставления:
// двойники, регистр, пунктуация, склейка "число+единица", стемминг, сортировка токенов.
func analogueKey(s string) string {
	if s == "" {
		return ""
	}
	out := unifyLookalikes(s)
	out = strings.ToLower(out)
	out = decComma.ReplaceAllString(out, "$1.$2")
	out = collapseSpaces(punct.ReplaceAllString(out, " "))
	out = attachNumberUnits(out)

	tokens := strings.Fields(out)
	for i, t := range tokens {
		tokens[i] = stem(strings.Trim(t, "."))
	}
	sort.Strings(tokens)
	return strings.TrimSpace(strings.Join(tokens, " "))
}

// Ё→Е, лат→кир внутри кириллических слов и в марках из двойников с цифрами (M500, A400),
// ×/*/· → пробел. "MAPEI" остаётся латиницей, "Цемeнт" с латинской e чинится.
func unifyLookalikes(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		cyr := hasCyrillic(w) || isLookalikeGrade(w)
		b := make([]rune, 0, len(w))
		for _, r := range w {
			switch r {
			case 'ё':
				r = 'е'
			case 'Ё':
				r = 'Е'
			case '×', '*', '·':
				r = ' '
			case 'x', 'X', 'х':
				// 30x30, 100х100 — размер, а не буква
				if len(b) > 0 && unicode.IsDigit(b[len(b)-1]) {
					r = ' '
				} else if cyr && r != 'х' {
					r = 'х'
				}
			default:
				if rr, ok := lookalikes[r]; ok && cyr {
					r = rr
				}
			}
			b = append(b, r)
		}
		words[i] = string(b)
	}
	return strings.Join(words, " ")
}

func isLookalikeGrade(w string) bool {
	digits := false
	for _, r := range w {
		switch {
		case unicode.IsDigit(r):
			digits = true
		case unicode.IsLetter(r):
			if _, ok := lookalikes[r]; !ok {
				return false
			}
		}
	}
	return digits
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}

func attachNumberUnits(s string) string {
	prev := ""
	out := s
	for out != prev {
		prev = out
		out = reAttachNumUnit.ReplaceAllString(out, "$1$3$4")
	}
	return collapseSpaces(out)
}

// stem: слова с цифрами (марки, размеры) не трогаем.
func stem(t string) string {
	if t == "" || strings.ContainsFunc(t, unicode.IsDigit) {
		return t
	}
	lang := "english"
	if hasCyrillic(t) {
		lang = "russian"
	}
	st, err := snowball.Stem(t, lang, true)
	if err != nil || st == "" {
		return t
	}
	return st
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// numUnits — отсортированное мультимножество "число+единица" ("50кг", "12мм").
func numUnits(s string) []string {
	mm := reNumUnitFind.FindAllString(s, -1)
	sort.Strings(mm)
	return mm
}

func equalNumUnits(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
