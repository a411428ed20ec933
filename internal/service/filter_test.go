package service_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/Gabrieexl/proyecto-calidad/internal/model"
	"github.com/Gabrieexl/proyecto-calidad/internal/service"
)

func filterFixture() []model.Customer {
	return []model.Customer{
		{ID: "1", CustomerFields: model.CustomerFields{Nombre: "Ana", Empresa: "ACME Corp", Etapa: model.StageFinalizado, TipoCliente: model.TypeFrecuentes}},
		{ID: "2", CustomerFields: model.CustomerFields{Nombre: "Bruno", Empresa: "Globex", Etapa: model.StageRetomarContacto, TipoCliente: model.TypeProspecto}},
		{ID: "3", CustomerFields: model.CustomerFields{Nombre: "Carla", Etapa: model.StageFinalizado, TipoCliente: model.TypeProspecto}},
		{ID: "4"},
	}
}

func ids(cs []model.Customer) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestFilterMatchesEmpresaCaseInsensitively(t *testing.T) {
	got := service.FilterClients(filterFixture(), service.Filter{Query: "acme"})
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestFilterEmptyReturnsInputInOrder(t *testing.T) {
	in := filterFixture()
	got := service.FilterClients(in, service.Filter{})

	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("empty filter changed the page (-in +got):\n%s", diff)
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	f := service.Filter{Query: "a", Tipo: model.TypeProspecto}
	once := service.FilterClients(filterFixture(), f)
	twice := service.FilterClients(filterFixture(), f)

	assert.Equal(t, once, twice)
	assert.Equal(t, once, service.FilterClients(once, f))
}

func TestFilterCombinesPredicates(t *testing.T) {
	cases := []struct {
		name   string
		filter service.Filter
		want   []string
	}{
		{"nombre match", service.Filter{Query: "BRU"}, []string{"2"}},
		{"etapa only", service.Filter{Etapa: model.StageFinalizado}, []string{"1", "3"}},
		{"tipo only", service.Filter{Tipo: model.TypeProspecto}, []string{"2", "3"}},
		{"etapa and tipo", service.Filter{Etapa: model.StageFinalizado, Tipo: model.TypeProspecto}, []string{"3"}},
		{"text and etapa", service.Filter{Query: "a", Etapa: model.StageRetomarContacto}, []string{}},
		{"no match", service.Filter{Query: "zzz"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(service.FilterClients(filterFixture(), tc.filter)))
		})
	}
}
