package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/handler"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{appErrors.Validation("nombre is required"), http.StatusBadRequest},
		{appErrors.ErrDeleteNotConfirmed, http.StatusBadRequest},
		{fmt.Errorf("update: %w", appErrors.NewCustomerNotFound("x")), http.StatusNotFound},
		{appErrors.NewReportNotFound("r.pdf"), http.StatusNotFound},
		{appErrors.ErrFetchInProgress, http.StatusConflict},
		{fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, handler.StatusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError_HidesServerDetail(t *testing.T) {
	w := httptest.NewRecorder()
	handler.WriteError(w, nil, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])

	w = httptest.NewRecorder()
	handler.WriteError(w, nil, appErrors.Validation("nombre is required"))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "nombre is required")
}
