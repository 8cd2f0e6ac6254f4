package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricelist-service/internal/fileio"
	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/structuring"
)

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newTestParser(opt Options, ai structuring.Structurer) *Parser {
	return NewParser(opt, ai, zerolog.Nop())
}

func TestParse_SpreadsheetEndToEnd(t *testing.T) {
	data := xlsxBytes(t, [][]any{
		{"№", "Наименование", "Ед.", "Цена с НДС", "Цена без НДС"},
		{1, "Цемент М500", "меш", "450,00", "375,00"},
		{2, "Песок речной", "т", "1 200,00", "1 000,00"},
		{3, "Щебень 20-40", "т", "1 500,00", "1 250,00"},
		{4, "Кирпич М150", "шт", "14,50", "12,08"},
		{5, "Арматура А500 12мм", "м", "85,00", "70,83"},
	})

	p := newTestParser(Options{}, nil)
	res, err := p.Parse(context.Background(), data, "prices.xlsx", "")
	require.NoError(t, err)

	require.Len(t, res.Items, 5)
	assert.Equal(t, "Цемент М500", res.Items[0].Title)
	assert.Equal(t, 450.0, *res.Items[0].Price)
	assert.Equal(t, 375.0, *res.Items[0].PriceWithoutTax)
	assert.Equal(t, "меш", *res.Items[0].Unit)
	assert.Equal(t, 85.0, *res.Items[4].Price)
	assert.Empty(t, res.Warnings)
	assert.False(t, res.UsedAI)
	assert.Equal(t, "xlsx", res.Source.Format)
	assert.Equal(t, "tabular", res.Source.Family)
	require.NotNil(t, res.Layout)
	assert.Equal(t, 1, res.Layout.TitleCol)
}

func TestParse_LowConfidenceCSV(t *testing.T) {
	csv := "Наименование;Ед.;Цена\nЦемент;меш;450\nПесок;т;\nЩебень;т;\nГравий;т;\n"
	res, err := newTestParser(Options{}, nil).Parse(context.Background(), []byte(csv), "p.csv", "text/csv")
	require.NoError(t, err)
	assert.Len(t, res.Items, 4)
	assert.True(t, res.HasWarning(model.WarnLowConfidence))
	assert.Len(t, res.Warnings, len(res.Details))
}

func TestParse_NoHeaderWarning(t *testing.T) {
	csv := "1;Цемент;450\n2;Песок;120\n"
	res, err := newTestParser(Options{}, nil).Parse(context.Background(), []byte(csv), "p.csv", "")
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Песок", res.Items[1].Title)
	assert.True(t, res.HasWarning(model.WarnNoHeader))
}

func TestParse_DocumentUsesStructurer(t *testing.T) {
	var got string
	ai := structuring.Func(func(_ context.Context, text string) ([]model.NormalizedItem, error) {
		got = text
		p := 389.9
		return []model.NormalizedItem{{Title: "Гипсокартон", Price: &p}}, nil
	})

	res, err := newTestParser(Options{}, ai).Parse(context.Background(), []byte("Гипсокартон 12,5 мм — 389,90 руб"), "offer.txt", "")
	require.NoError(t, err)
	assert.Contains(t, got, "Гипсокартон")
	require.Len(t, res.Items, 1)
	assert.True(t, res.UsedAI)
	assert.True(t, res.HasWarning(model.WarnAIStructured))
	assert.Nil(t, res.Layout)
	assert.Equal(t, "document", res.Source.Family)
}

func TestParse_DocumentTruncated(t *testing.T) {
	var got string
	ai := structuring.Func(func(_ context.Context, text string) ([]model.NormalizedItem, error) {
		got = text
		return []model.NormalizedItem{{Title: "Позиция"}}, nil
	})
	res, err := newTestParser(Options{MaxTextRunes: 5}, ai).Parse(context.Background(), []byte("Шпатлёвка финишная"), "a.txt", "")
	require.NoError(t, err)
	assert.Equal(t, "Шпатл", got)
	assert.True(t, res.HasWarning(model.WarnTruncated))
	assert.True(t, res.HasWarning(model.WarnLowConfidence))
}

func TestParse_DocumentWithoutStructurer(t *testing.T) {
	_, err := newTestParser(Options{}, nil).Parse(context.Background(), []byte("текст"), "a.txt", "")
	assert.ErrorIs(t, err, structuring.ErrServiceUnavailable)
}

func TestParse_StructurerFailureIsDistinct(t *testing.T) {
	ai := structuring.Func(func(context.Context, string) ([]model.NormalizedItem, error) {
		return nil, structuring.ErrMalformedReply
	})
	_, err := newTestParser(Options{}, ai).Parse(context.Background(), []byte("текст"), "a.txt", "")
	assert.ErrorIs(t, err, structuring.ErrMalformedReply)
	assert.True(t, IsStructuringError(err))
	assert.False(t, errors.Is(err, model.ErrNoRowsExtracted))
}

func TestParse_DegenerateGrid(t *testing.T) {
	csv := []byte("Прайс на услуги\nМонтаж перегородок от 450 руб/м2\n")

	t.Run("ai disabled", func(t *testing.T) {
		_, err := newTestParser(Options{}, nil).Parse(context.Background(), csv, "p.csv", "")
		assert.ErrorIs(t, err, model.ErrNoRowsExtracted)
	})

	t.Run("fallback enabled but no structurer", func(t *testing.T) {
		_, err := newTestParser(Options{AIOnDegenerate: true}, nil).Parse(context.Background(), csv, "p.csv", "")
		assert.ErrorIs(t, err, model.ErrNoRowsExtracted)
		assert.NotErrorIs(t, err, structuring.ErrServiceUnavailable)
	})

	t.Run("fallback enabled but client not configured", func(t *testing.T) {
		ai := structuring.NewClient(structuring.Config{}, zerolog.Nop())
		_, err := newTestParser(Options{AIOnDegenerate: true}, ai).Parse(context.Background(), csv, "p.csv", "")
		assert.ErrorIs(t, err, model.ErrNoRowsExtracted)
		assert.NotErrorIs(t, err, structuring.ErrServiceUnavailable)
	})

	t.Run("ai fallback", func(t *testing.T) {
		var got string
		ai := structuring.Func(func(_ context.Context, text string) ([]model.NormalizedItem, error) {
			got = text
			p := 450.0
			u := "м2"
			return []model.NormalizedItem{{Title: "Монтаж перегородок", Price: &p, Unit: &u}}, nil
		})
		res, err := newTestParser(Options{AIOnDegenerate: true}, ai).Parse(context.Background(), csv, "p.csv", "")
		require.NoError(t, err)
		assert.Contains(t, got, "Монтаж перегородок от 450 руб/м2")
		assert.True(t, res.UsedAI)
		require.Len(t, res.Items, 1)
		assert.NotNil(t, res.Layout)
	})

	t.Run("ai fails", func(t *testing.T) {
		ai := structuring.Func(func(context.Context, string) ([]model.NormalizedItem, error) {
			return nil, structuring.ErrServiceError
		})
		_, err := newTestParser(Options{AIOnDegenerate: true}, ai).Parse(context.Background(), csv, "p.csv", "")
		assert.ErrorIs(t, err, model.ErrNoRowsExtracted)
		assert.ErrorIs(t, err, structuring.ErrServiceError)
	})
}

func TestParse_ExtractErrors(t *testing.T) {
	p := newTestParser(Options{MaxBytes: 10}, nil)
	_, err := p.Parse(context.Background(), make([]byte, 11), "a.exe", "")
	assert.ErrorIs(t, err, fileio.ErrFileTooLarge)

	_, err = p.Parse(context.Background(), []byte("x"), "a.exe", "")
	assert.ErrorIs(t, err, fileio.ErrUnsupportedFormat)

	_, err = p.Parse(context.Background(), nil, "a.csv", "")
	assert.ErrorIs(t, err, fileio.ErrEmptyFile)
}

func TestGridText(t *testing.T) {
	grid := [][]string{{"a", "b", ""}, {"", "", ""}, {"c", "", ""}}
	assert.Equal(t, "a\tb\nc\n", GridText(grid))
}
