package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "цемент м500", TitleKey("  Цемент   М500 "))
	assert.Equal(t, TitleKey("ПЕСОК"), TitleKey("песок"))
	assert.NotEqual(t, TitleKey("Цемент М-500"), TitleKey("Цемент М500"))
}

func TestAnalogueKey(t *testing.T) {
	// латинская M в кириллическом слове, пробел перед единицей, порядок слов
	assert.Equal(t, analogueKey("Цемент М500 50кг"), analogueKey("50 кг цемент M500"))
	assert.Equal(t, analogueKey("Брус 100х100"), analogueKey("брус 100x100"))
	assert.False(t, hasCyrillic(analogueKey("MAPEI")), "latin brand names stay latin")
	assert.Empty(t, analogueKey(""))
}

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"кот", "", 3},
		{"кот", "кто", 1},
		{"цемент", "цемнет", 1},
		{"песок", "пессок", 1},
		{"abc", "xyz", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, damerauLevenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("abc", ""))
	assert.InDelta(t, 2.0/3.0, tokenOverlap("а б в", "а б г"), 1e-9)
}
