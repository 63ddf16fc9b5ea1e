package rest

import (
	"context"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	db := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn(r.Context(), "database ping failed", "error", err)
		db = "disconnected"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Database:  db,
	})
}
