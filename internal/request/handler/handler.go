package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	cmpmodel "pricelist-service/internal/compare/model"
	cmpSvc "pricelist-service/internal/compare/service"
	"pricelist-service/internal/config"
	"pricelist-service/internal/httpx"
	"pricelist-service/internal/request/model"
	reqSvc "pricelist-service/internal/request/service"
)

type draftsResponse struct {
	Drafts []model.Draft `json:"drafts"`
}

type sendResponse struct {
	Drafts []model.Draft     `json:"drafts"`
	Batch  model.BatchResult `json:"batch"`
}

// drafts: требовать supplierIds или нет, решает вызывающий; пустой список — пустой результат.
func drafts(w http.ResponseWriter, r *http.Request, cfg config.Config, needSelection bool) ([]model.Draft, bool) {
	var req cmpmodel.ComparisonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, err)
		return nil, false
	}
	if needSelection && len(req.SupplierIDs) == 0 {
		httpx.Fail(w, r, &httpx.ValidationError{Fields: map[string]string{"supplierIds": "is required"}})
		return nil, false
	}
	c := cmpSvc.Build(req.Items, req.Suppliers, req.Substitutions, cmpSvc.Options{AnalogueThreshold: cfg.AnalogueThreshold})
	return reqSvc.Build(c, req.SupplierIDs), true
}

// Drafts — POST /requests: черновики заявок по выбранным поставщикам, без отправки.
func Drafts(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, ok := drafts(w, r, cfg, false)
		if !ok {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, draftsResponse{Drafts: ds})
	}
}

// Send — POST /requests/send. 200 — всё ушло, 207 — часть не ушла, 502 — не ушло ничего.
func Send(cfg config.Config, sender reqSvc.Sender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ds, ok := drafts(w, r, cfg, true)
		if !ok {
			return
		}
		log := zerolog.Ctx(r.Context())

		batch, err := reqSvc.SendAll(r.Context(), ds, sender, cfg.SendConcurrency, *log)
		status := http.StatusOK
		var partial *model.PartialSendError
		if errors.As(err, &partial) {
			status = http.StatusMultiStatus
			if batch.Sent == 0 {
				status = http.StatusBadGateway
			}
		}
		log.Info().
			Int("drafts", len(ds)).
			Int("sent", batch.Sent).
			Int("failed", len(batch.Errors)).
			Dur("elapsed", time.Since(start)).
			Msg("send all done")
		httpx.WriteJSON(w, status, sendResponse{Drafts: ds, Batch: batch})
	}
}
