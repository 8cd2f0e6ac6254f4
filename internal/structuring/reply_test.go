package structuring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_Fenced(t *testing.T) {
	reply := "```json\n[{\"title\":\"Цемент М500\",\"price\":450,\"unit\":\"меш.\",\"category\":\"Сухие смеси\"}]\n```"
	items, dropped, err := ParseReply(reply)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Цемент М500", it.Title)
	require.NotNil(t, it.Price)
	assert.Equal(t, 450.0, *it.Price)
	require.NotNil(t, it.Unit)
	assert.Equal(t, "меш", *it.Unit)
	require.NotNil(t, it.Category)
	assert.Equal(t, "Сухие смеси", *it.Category)
}

func TestParseReply_ProseAroundArray(t *testing.T) {
	reply := `Конечно! Вот позиции: [{"title":"Кирпич","price":"12,50"},{"title":"Песок","price":"договорная"}] Надеюсь, помог.`
	items, _, err := ParseReply(reply)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 12.5, *items[0].Price)
	assert.Nil(t, items[1].Price, "non-numeric price becomes null")
}

func TestParseReply_DropsItemsWithoutTitle(t *testing.T) {
	reply := `[{"title":"  "},{"price":10},{"title":42},{"title":"Щебень","price":null}]`
	items, dropped, err := ParseReply(reply)
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	require.Len(t, items, 1)
	assert.Equal(t, "Щебень", items[0].Title)
	assert.Nil(t, items[0].Price)
}

func TestParseReply_EmptyArrayIsNotAnError(t *testing.T) {
	items, _, err := ParseReply("[]")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestParseReply_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  error
	}{
		{"empty", "  \n", ErrEmptyReply},
		{"empty fence", "```json\n```", ErrEmptyReply},
		{"no array", `{"title":"x"}`, ErrMalformedReply},
		{"prose only", "Не удалось найти позиции", ErrMalformedReply},
		{"broken json", `[{"title": "x",]`, ErrMalformedReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseReply(tt.reply)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
