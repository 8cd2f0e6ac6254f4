package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pricelist-service/internal/compare/model"
	cmpSvc "pricelist-service/internal/compare/service"
	"pricelist-service/internal/config"
	"pricelist-service/internal/httpx"
)

type comparisonResponse struct {
	model.Comparison
	View model.View `json:"view"`
}

func options(cfg config.Config) cmpSvc.Options {
	return cmpSvc.Options{AnalogueThreshold: cfg.AnalogueThreshold}
}

// decode читает тело и сразу считает сравнение с фильтрами.
func decode(w http.ResponseWriter, r *http.Request, cfg config.Config) (model.ComparisonRequest, model.Comparison, model.View, bool) {
	var req model.ComparisonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, r, err)
		return req, model.Comparison{}, model.View{}, false
	}
	c := cmpSvc.Build(req.Items, req.Suppliers, req.Substitutions, options(cfg))
	return req, c, cmpSvc.ApplyFilters(c, req.Filters), true
}

// Compare — POST /comparisons: матрица, итоги и представление после фильтров.
func Compare(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		req, c, v, ok := decode(w, r, cfg)
		if !ok {
			return
		}
		zerolog.Ctx(r.Context()).Info().
			Int("items", len(req.Items)).
			Int("suppliers", len(req.Suppliers)).
			Int("substitutions", len(req.Substitutions)).
			Int("ignored_substitutions", len(c.IgnoredSubstitutions)).
			Float64("grand_total", c.GrandTotal).
			Dur("elapsed", time.Since(start)).
			Msg("comparison built")
		httpx.WriteJSON(w, http.StatusOK, comparisonResponse{Comparison: c, View: v})
	}
}

// Export — POST /comparisons/export: то же представление книгой XLSX.
func Export(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, v, ok := decode(w, r, cfg)
		if !ok {
			return
		}
		data, err := cmpSvc.ExportXLSX(v)
		if err != nil {
			httpx.Fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="comparison.xlsx"`)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
