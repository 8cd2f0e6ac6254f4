package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pricelist-service/internal/fileio"
	"pricelist-service/internal/pricelist/model"
	"pricelist-service/internal/structuring"
)

// lowConfidenceShare — доля позиций без цены, начиная с которой классификатор, скорее всего, промахнулся.
const lowConfidenceShare = 0.7

type Options struct {
	MaxBytes       int64 // <= 0 -> fileio.DefaultMaxBytes
	AIOnDegenerate bool  // сетка не дала позиций -> отдать текст сервису разметки
	MaxTextRunes   int   // <= 0 -> без обрезки
}

// Parser — сквозной разбор: байты -> формат -> сетка/текст -> позиции + предупреждения.
type Parser struct {
	opt Options
	ai  structuring.Structurer
	log zerolog.Logger
}

// NewParser: ai может быть nil — тогда документы отклоняются с ErrServiceUnavailable.
func NewParser(opt Options, ai structuring.Structurer, logger zerolog.Logger) *Parser {
	return &Parser{opt: opt, ai: ai, log: logger.With().Str("component", "parser").Logger()}
}

// aiAvailable: для документов разметка обязательна, для сетки — только запасной путь.
// Не настроенный клиент запасным путём не считается.
func (p *Parser) aiAvailable() bool {
	if p.ai == nil {
		return false
	}
	if c, ok := p.ai.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Parse ничего не сохраняет: результат — превью для подтверждения пользователем.
func (p *Parser) Parse(ctx context.Context, data []byte, filename, contentType string) (*model.ParseResult, error) {
	start := time.Now()
	log := zerolog.Ctx(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = &p.log
	}

	ext, err := fileio.Read(data, filename, contentType, p.opt.MaxBytes)
	if err != nil {
		log.Warn().Err(err).Str("file", filename).Int("size", len(data)).Msg("extract failed")
		return nil, err
	}

	res := &model.ParseResult{
		Items:    []model.NormalizedItem{},
		Warnings: []string{},
		Details:  []model.Warning{},
		Source: model.Source{
			Filename:    filename,
			ContentType: contentType,
			Format:      string(ext.Format),
			Family:      string(ext.Family),
			Size:        len(data),
		},
	}
	for _, w := range ext.Warnings {
		res.Warn(model.WarnCSVParse, "%s", w)
	}

	if ext.Family == fileio.FamilyDocument {
		if err := p.structure(ctx, ext.Text, res); err != nil {
			return nil, err
		}
	} else if err := p.parseGrid(ctx, ext.Grid, res, log); err != nil {
		return nil, err
	}

	log.Info().
		Str("file", filename).
		Str("format", string(ext.Format)).
		Int("items", len(res.Items)).
		Int("warnings", len(res.Warnings)).
		Bool("ai", res.UsedAI).
		Dur("elapsed", time.Since(start)).
		Msg("price list parsed")
	return res, nil
}

func (p *Parser) parseGrid(ctx context.Context, grid [][]string, res *model.ParseResult, log *zerolog.Logger) error {
	lay := Classify(grid)
	res.Layout = &lay
	log.Debug().
		Bool("headers", lay.HasLikelyHeaders).
		Int("header_row", lay.HeaderRow).
		Int("title_col", lay.TitleCol).
		Interface("price_tax_col", lay.PriceWithTaxCol).
		Interface("price_notax_col", lay.PriceWithoutTaxCol).
		Interface("unit_col", lay.UnitCol).
		Int("offset", lay.RowIndexOffset).
		Strs("rationale", lay.Rationale).
		Msg("layout")

	if !lay.HasLikelyHeaders {
		res.Warn(model.WarnNoHeader, "header row not found, columns assigned by position")
	}

	items, st := NormalizeRows(grid, lay)
	if len(items) == 0 {
		if !p.opt.AIOnDegenerate || !p.aiAvailable() {
			return fmt.Errorf("%w: %d rows scanned", model.ErrNoRowsExtracted, st.Rows)
		}
		log.Info().Int("rows", st.Rows).Msg("grid gave no items, falling back to structuring")
		if err := p.structure(ctx, GridText(grid), res); err != nil {
			return fmt.Errorf("%w: %w", model.ErrNoRowsExtracted, err)
		}
		return nil
	}

	res.Items = items
	if st.BadPriceCells > 0 {
		res.Warn(model.WarnRowParse, "%d price cells could not be parsed as numbers", st.BadPriceCells)
	}
	if float64(st.Unpriced) >= lowConfidenceShare*float64(len(items)) {
		res.Warn(model.WarnLowConfidence,
			"%d of %d items have no price; column detection may be wrong, please check the preview",
			st.Unpriced, len(items))
	}
	return nil
}

// structure отдаёт текст сервису разметки. Ответ без позиций — тоже ошибка:
// "ничего не нашли" не должно выглядеть как успешный пустой прайс.
func (p *Parser) structure(ctx context.Context, text string, res *model.ParseResult) error {
	if p.ai == nil {
		return fmt.Errorf("%w: no structuring service configured", structuring.ErrServiceUnavailable)
	}
	if p.opt.MaxTextRunes > 0 {
		if r := []rune(text); len(r) > p.opt.MaxTextRunes {
			text = string(r[:p.opt.MaxTextRunes])
			res.Warn(model.WarnTruncated, "document text truncated to %d of %d characters", p.opt.MaxTextRunes, len(r))
		}
	}

	items, err := p.ai.Structure(ctx, text)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return model.ErrNoRowsExtracted
	}
	res.Items = items
	res.UsedAI = true
	res.Warn(model.WarnAIStructured, "items were extracted automatically from unstructured text, please review")

	unpriced := 0
	for _, it := range items {
		if it.Price == nil {
			unpriced++
		}
	}
	if float64(unpriced) >= lowConfidenceShare*float64(len(items)) {
		res.Warn(model.WarnLowConfidence, "%d of %d items have no price", unpriced, len(items))
	}
	return nil
}

// GridText склеивает сетку в текст (ячейки через табуляцию) для сервиса разметки.
func GridText(grid [][]string) string {
	var b strings.Builder
	for _, row := range grid {
		line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// IsStructuringError — ошибка пришла от сервиса разметки (для выбора HTTP-статуса).
func IsStructuringError(err error) bool {
	return errors.Is(err, structuring.ErrServiceUnavailable) ||
		errors.Is(err, structuring.ErrServiceError) ||
		errors.Is(err, structuring.ErrEmptyReply) ||
		errors.Is(err, structuring.ErrMalformedReply)
}
