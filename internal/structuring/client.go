package structuring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"pricelist-service/internal/pricelist/model"
)

// Config клиента OpenAI-совместимого chat/completions API.
type Config struct {
	BaseURL     string        // например https://api.openai.com/v1
	APIKey      string        // пустой ключ = сервис не настроен
	Model       string        // например gpt-4o-mini
	Temperature float64       // 0..2
	Timeout     time.Duration // на одну попытку
	MaxRetries  int           // повторы на 429/5xx/сетевые ошибки
	RPS         float64       // <= 0 — без ограничения
}

type Client struct {
	cfg     Config
	http    *resty.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
		})
	if cfg.APIKey != "" {
		hc.SetAuthToken(cfg.APIKey)
	}

	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.With().Str("component", "structuring").Logger(),
	}
}

// Configured — есть куда и с чем ходить.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Structure implements Structurer.
func (c *Client) Structure(ctx context.Context, text string) ([]model.NormalizedItem, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%w: AI_BASE_URL/AI_API_KEY not set", ErrServiceUnavailable)
	}
	rid := uuid.NewString()
	start := time.Now()
	log := c.log.With().Str("ai_rid", rid).Logger()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceError, err)
	}

	req := NewRequest(text)
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]string{
			{"role": "system", "content": req.Instructions},
			{"role": "user", "content": req.SourceText},
		},
	}

	log.Info().Str("model", c.cfg.Model).Int("text_len", len(text)).Msg("structuring request")
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", rid).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("structuring transport error")
		return nil, fmt.Errorf("%w: %v", ErrServiceError, err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Int("bytes", len(resp.Body())).Msg("structuring non-2xx")
		return nil, fmt.Errorf("%w: status %d", ErrServiceError, resp.StatusCode())
	}

	var cc chatCompletion
	if err := json.Unmarshal(resp.Body(), &cc); err != nil {
		return nil, fmt.Errorf("%w: decode completion: %v", ErrMalformedReply, err)
	}
	if len(cc.Choices) == 0 || strings.TrimSpace(cc.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyReply
	}

	items, dropped, err := ParseReply(cc.Choices[0].Message.Content)
	if err != nil {
		log.Warn().Err(err).Msg("structuring reply rejected")
		return nil, err
	}
	log.Info().
		Int("items", len(items)).
		Int("dropped", dropped).
		Dur("elapsed", time.Since(start)).
		Msg("structuring done")
	return items, nil
}
