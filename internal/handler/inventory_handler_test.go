package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabrieexl/proyecto-calidad/internal/handler"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

func TestGetInventory(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"sku":"A1","stock":3}]`))
	}))
	defer upstream.Close()

	h := &handler.InventoryHandler{Service: &service.InventoryService{URL: upstream.URL}}
	w := httptest.NewRecorder()
	h.GetInventory(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"sku":"A1","stock":3}]`, w.Body.String())
}

func TestGetInventory_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	h := &handler.InventoryHandler{Service: &service.InventoryService{URL: upstream.URL}}
	w := httptest.NewRecorder()
	h.GetInventory(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Error al cargar el inventario", body["error"])
}
