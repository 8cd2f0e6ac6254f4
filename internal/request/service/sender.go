package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pricelist-service/internal/request/model"
)

const DefaultConcurrency = 4

// Sender — внешний получатель заявки (ERP, почтовый шлюз, вебхук поставщика).
// Повторная отправка того же черновика должна быть безопасной.
type Sender interface {
	Send(ctx context.Context, d model.Draft) error
}

type SenderFunc func(ctx context.Context, d model.Draft) error

func (f SenderFunc) Send(ctx context.Context, d model.Draft) error { return f(ctx, d) }

// SendAll отправляет черновики параллельно (не больше concurrency одновременно).
// Ошибка одного поставщика не останавливает остальных; при сбоях возвращается
// *model.PartialSendError вместе с полным BatchResult.
func SendAll(ctx context.Context, drafts []model.Draft, sender Sender, concurrency int, logger zerolog.Logger) (model.BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	results := make([]model.SendResult, len(drafts))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, d := range drafts {
		i, d := i, d
		g.Go(func() error {
			start := time.Now()
			err := sender.Send(ctx, d)
			results[i] = model.SendResult{SupplierID: d.SupplierID, OK: err == nil}
			if err != nil {
				results[i].Error = err.Error()
				logger.Warn().Err(err).Str("supplier", d.SupplierID).Dur("elapsed", time.Since(start)).Msg("request send failed")
				return nil
			}
			logger.Info().Str("supplier", d.SupplierID).Int("lines", len(d.Lines)).Float64("total", d.Total).
				Dur("elapsed", time.Since(start)).Msg("request sent")
			return nil
		})
	}
	_ = g.Wait()

	batch := model.BatchResult{Results: results, Errors: []string{}}
	for _, r := range results {
		if r.OK {
			batch.Sent++
			continue
		}
		batch.Errors = append(batch.Errors, fmt.Sprintf("%s: %s", r.SupplierID, r.Error))
	}
	if len(batch.Errors) > 0 {
		return batch, &model.PartialSendError{Batch: batch}
	}
	return batch, nil
}

// WebhookSender POST-ит черновик JSON-ом на URL. Idempotency-Key = поставщик + хэш черновика,
// чтобы получатель мог отбросить повтор.
type WebhookSender struct {
	http *resty.Client
	url  string
}

func NewWebhookSender(url string, timeout time.Duration, retries int) *WebhookSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(300 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})
	return &WebhookSender{http: c, url: url}
}

func (w *WebhookSender) Send(ctx context.Context, d model.Draft) error {
	key, err := IdempotencyKey(d)
	if err != nil {
		return err
	}
	resp, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Idempotency-Key", key).
		SetBody(d).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send to %s: %w", d.SupplierID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("send to %s: status %d", d.SupplierID, resp.StatusCode())
	}
	return nil
}

func IdempotencyKey(d model.Draft) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return d.SupplierID + ":" + hex.EncodeToString(sum[:8]), nil
}

// LogSender только пишет черновик в лог — по умолчанию, когда вебхук не настроен.
type LogSender struct {
	Log zerolog.Logger
}

func (l LogSender) Send(_ context.Context, d model.Draft) error {
	l.Log.Info().
		Str("supplier", d.SupplierID).
		Int("lines", len(d.Lines)).
		Float64("total", d.Total).
		Interface("draft", d).
		Msg("purchase request draft")
	return nil
}
