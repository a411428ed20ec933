// internal/controller/client_controller.go
package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appErrors "github.com/Gabrieexl/proyecto-calidad/internal/errors"
	"github.com/Gabrieexl/proyecto-calidad/internal/handler"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

type ClientController struct {
	Lists   *service.SessionLists
	Timeout time.Duration
	Logger  *zap.Logger
}

func (c *ClientController) list(r *http.Request) *service.ClientList {
	return c.Lists.Get(handler.SessionToken(r))
}

func (c *ClientController) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), c.Timeout)
}

func filterFrom(r *http.Request) service.Filter {
	q := r.URL.Query()
	return service.Filter{Query: q.Get("q"), Etapa: q.Get("etapa"), Tipo: q.Get("tipo")}
}

func pageResponse(v service.PageView) map[string]interface{} {
	resp := map[string]interface{}{
		"data": v.Records,
		"pagination": map[string]interface{}{
			"page":      v.Page,
			"page_size": service.PageSize,
			"has_next":  v.HasNext,
			"has_prev":  v.HasPrev,
			"loaded":    v.Loaded,
		},
	}
	if v.Err != "" {
		resp["error"] = v.Err
	}
	return resp
}

// ListClients navigates when dir is given (or on first use) and returns the
// filtered window.
func (c *ClientController) ListClients(w http.ResponseWriter, r *http.Request) {
	list := c.list(r)

	dirParam := r.URL.Query().Get("dir")
	if dirParam == "" && !list.Loaded() {
		dirParam = string(service.DirStart)
	}
	if dirParam != "" {
		dir, err := service.ParseDirection(dirParam)
		if err != nil {
			handler.WriteError(w, c.Logger, err)
			return
		}

		ctx, cancel := c.ctx(r)
		defer cancel()
		if _, err := list.FetchPage(ctx, dir); err != nil {
			status := handler.StatusFor(err)
			if status == http.StatusInternalServerError {
				status = http.StatusBadGateway
			}
			resp := pageResponse(list.View(filterFrom(r)))
			resp["error"] = err.Error()
			handler.WriteJSON(w, status, resp)
			return
		}
	}

	handler.WriteJSON(w, http.StatusOK, pageResponse(list.View(filterFrom(r))))
}

func (c *ClientController) CreateClient(w http.ResponseWriter, r *http.Request) {
	var fields model.CustomerFields
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		handler.WriteError(w, c.Logger, appErrors.Validation("invalid body: %v", err))
		return
	}

	ctx, cancel := c.ctx(r)
	defer cancel()
	created, err := c.list(r).Create(ctx, fields)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, created)
}

func (c *ClientController) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]string
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		handler.WriteError(w, c.Logger, appErrors.Validation("invalid body: %v", err))
		return
	}

	ctx, cancel := c.ctx(r)
	defer cancel()
	list := c.list(r)
	if err := list.Update(ctx, id, patch); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	if updated, ok := list.Get(id); ok {
		handler.WriteJSON(w, http.StatusOK, updated)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "updated"})
}

func (c *ClientController) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	ctx, cancel := c.ctx(r)
	defer cancel()
	if err := c.list(r).Delete(ctx, id, confirmed); err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportClients downloads the filtered, currently loaded page as xlsx.
func (c *ClientController) ExportClients(w http.ResponseWriter, r *http.Request) {
	data, err := service.ExportClients(c.list(r).View(filterFrom(r)).Records)
	if err != nil {
		handler.WriteError(w, c.Logger, err)
		return
	}

	w.Header().Set("Content-Type", service.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
