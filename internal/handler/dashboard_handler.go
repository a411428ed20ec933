package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
	Pending   *service.PendingService
	Logger    *zap.Logger
}

func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Dashboard.Stats())
}

func (h *DashboardHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.Pending.Pending(r.Context())
	if err != nil {
		WriteError(w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": clientes})
}
