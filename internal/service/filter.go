package service

import (
	"strings"

	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

// Filter narrows an already loaded page. Zero values pass everything.
type Filter struct {
	Query string
	Etapa string
	Tipo  string
}

// FilterClients keeps, in order, the records whose nombre or empresa contains
// f.Query (case-insensitive) and whose etapa and tipo_cliente equal f.Etapa and
// f.Tipo when those are set. It always returns a new slice.
func FilterClients(records []model.Customer, f Filter) []model.Customer {
	text := strings.ToLower(f.Query)
	out := make([]model.Customer, 0, len(records))
	for _, c := range records {
		if text != "" && !c.Matches(text) {
			continue
		}
		if f.Etapa != "" && c.Etapa != f.Etapa {
			continue
		}
		if f.Tipo != "" && c.TipoCliente != f.Tipo {
			continue
		}
		out = append(out, c)
	}
	return out
}
