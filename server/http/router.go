package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	cmpHnd "pricelist-service/internal/compare/handler"
	"pricelist-service/internal/config"
	"pricelist-service/internal/middleware"
	plHnd "pricelist-service/internal/pricelist/handler"
	plSvc "pricelist-service/internal/pricelist/service"
	reqHnd "pricelist-service/internal/request/handler"
	reqSvc "pricelist-service/internal/request/service"
	"pricelist-service/internal/structuring"
	"pricelist-service/server/http/handlers"
)

// Deps — внешние зависимости, которые main собирает из конфига, а тесты подменяют.
type Deps struct {
	Structurer structuring.Structurer // nil — документы отклоняются с 503
	AIEnabled  bool
	Sender     reqSvc.Sender
}

// NewDeps собирает зависимости по конфигу: клиент разметки и отправщик заявок.
func NewDeps(cfg config.Config, logger zerolog.Logger) Deps {
	ai := structuring.NewClient(structuring.Config{
		BaseURL:    cfg.AIBaseURL,
		APIKey:     cfg.AIAPIKey,
		Model:      cfg.AIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxRetries,
		RPS:        cfg.AIRPS,
	}, logger)

	var sender reqSvc.Sender = reqSvc.LogSender{Log: logger.With().Str("component", "sender").Logger()}
	if cfg.SendWebhookURL != "" {
		sender = reqSvc.NewWebhookSender(cfg.SendWebhookURL, 0, 2)
	}
	return Deps{Structurer: ai, AIEnabled: ai.Configured(), Sender: sender}
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	// запас на multipart-обвязку поверх самого файла
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes() + 1<<20))

	r.Get("/health", handlers.Health(deps.AIEnabled))

	parser := plSvc.NewParser(plSvc.Options{
		MaxBytes:       cfg.MaxUploadBytes(),
		AIOnDegenerate: cfg.AIOnDegenerate,
		MaxTextRunes:   cfg.AIMaxTextRunes,
	}, deps.Structurer, logger)
	r.Post("/pricelists/parse", plHnd.Parse(parser, cfg.MaxUploadBytes()))

	r.Route("/comparisons", func(r chi.Router) {
		r.Post("/", cmpHnd.Compare(cfg))
		r.Post("/export", cmpHnd.Export(cfg))
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", reqHnd.Drafts(cfg))
		r.Post("/send", reqHnd.Send(cfg, deps.Sender))
	})

	return r
}
