package handlers

import (
	"net/http"
	"time"

	"pricelist-service/internal/httpx"
)

var started = time.Now()

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	AIEnabled bool   `json:"aiEnabled"`
}

// Health — GET /health. aiEnabled показывает, настроен ли сервис разметки.
func Health(aiEnabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Uptime:    time.Since(started).Truncate(time.Second).String(),
			AIEnabled: aiEnabled,
		})
	}
}
