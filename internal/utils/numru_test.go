package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1 234,50", ptr(1234.5)},
		{"1 234,50", ptr(1234.5)},
		{"197 ,00", ptr(197)},
		{"1,234.50", ptr(1234.5)},
		{"1.234,50", ptr(1234.5)},
		{"350 руб.", ptr(350)},
		{"₽ 99,9", ptr(99.9)},
		{"42", ptr(42)},
		{"", nil},
		{"   ", nil},
		{"—", nil},
		{"-", nil},
		{"по запросу", nil},
		{"12 шт", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParsePrice(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("42"))
	assert.True(t, IsNumeric("3,5"))
	assert.False(t, IsNumeric("Молоко 3,2%"))
	assert.False(t, IsNumeric("Наименование"))
}

func TestCanonicalUnit(t *testing.T) {
	tests := map[string]string{
		"шт":     "шт",
		"Шт.":    "шт",
		"штук":   "шт",
		"кг":     "кг",
		"кв. м":  "м2",
		"м²":     "м2",
		"упак.":  "уп",
		"pcs":    "шт",
		"литров": "л",
	}
	for in, want := range tests {
		got, ok := CanonicalUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := CanonicalUnit("Молоко")
	assert.False(t, ok)
}

func TestFindUnitToken(t *testing.T) {
	u, ok := FindUnitToken("Цены указаны за 1 кг, с НДС")
	require.True(t, ok)
	assert.Equal(t, "кг", u)

	u, ok = FindUnitToken("Цена за м, доставка отдельно")
	require.True(t, ok)
	assert.Equal(t, "м", u)

	_, ok = FindUnitToken("г. Москва, ул. Ленина")
	assert.False(t, ok)
}

func ptr(f float64) *float64 { return &f }
