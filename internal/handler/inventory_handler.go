package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

type InventoryHandler struct {
	Service *service.InventoryService
	Logger  *zap.Logger
}

func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.Fetch(r.Context())
	if err != nil {
		logging.OrNop(h.Logger).Error("inventory proxy failed", zap.Error(err))
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error al cargar el inventario"})
		return
	}
	WriteJSON(w, http.StatusOK, data)
}
