// internal/model/customer.go
package model

import "strings"

// Stages and customer types offered by the UI. They are not enforced on write.
const (
	StageRetomarContacto = "Retomar Contacto"
	StageContactoInicial = "Contacto Inicial-1"
	StageFinalizado      = "Finalizado"

	TypeProspecto  = "Prospecto"
	TypeFrecuentes = "Frecuentes"
)

// CustomerFields holds every optional attribute of a client document.
// The json keys are the document keys stored in the clientes collection.
type CustomerFields struct {
	Nombre        string `json:"nombre,omitempty"`
	Nombres       string `json:"nombres,omitempty"`
	Apellidos     string `json:"apellidos,omitempty"`
	Empresa       string `json:"empresa,omitempty"`
	RazonSocial   string `json:"razon_social,omitempty"`
	RUC           string `json:"ruc,omitempty"`
	Direccion     string `json:"direccion,omitempty"`
	Distrito      string `json:"distrito,omitempty"`
	Provincia     string `json:"provincia,omitempty"`
	PaginaWeb     string `json:"pagina_web,omitempty"`
	Email         string `json:"email,omitempty"`
	Telefono      string `json:"telefono,omitempty"`
	Cargo         string `json:"cargo,omitempty"`
	Etapa         string `json:"etapa,omitempty"`
	TipoCliente   string `json:"tipo_cliente,omitempty"`
	Fecha         string `json:"fecha,omitempty"`
	MedioContacto string `json:"medio_contacto,omitempty"`
	Comentario    string `json:"comentario,omitempty"`
	Rubro         string `json:"rubro,omitempty"`
}

// Customer is a client document plus its store-assigned id.
type Customer struct {
	ID string `json:"id"`
	CustomerFields
}

// Field describes one attribute of the schema, in schema order.
type Field struct {
	Key   string
	Label string
	get   func(*CustomerFields) *string
}

// Get returns the value of the field on c.
func (f Field) Get(c *CustomerFields) string { return *f.get(c) }

// Schema lists the 19 customer fields in display/export order.
var Schema = []Field{
	{"nombre", "Nombre", func(c *CustomerFields) *string { return &c.Nombre }},
	{"nombres", "Nombres", func(c *CustomerFields) *string { return &c.Nombres }},
	{"apellidos", "Apellidos", func(c *CustomerFields) *string { return &c.Apellidos }},
	{"empresa", "Empresa", func(c *CustomerFields) *string { return &c.Empresa }},
	{"razon_social", "Razón Social", func(c *CustomerFields) *string { return &c.RazonSocial }},
	{"ruc", "RUC", func(c *CustomerFields) *string { return &c.RUC }},
	{"direccion", "Dirección", func(c *CustomerFields) *string { return &c.Direccion }},
	{"distrito", "Distrito", func(c *CustomerFields) *string { return &c.Distrito }},
	{"provincia", "Provincia", func(c *CustomerFields) *string { return &c.Provincia }},
	{"pagina_web", "Página Web", func(c *CustomerFields) *string { return &c.PaginaWeb }},
	{"email", "Email", func(c *CustomerFields) *string { return &c.Email }},
	{"telefono", "Teléfono", func(c *CustomerFields) *string { return &c.Telefono }},
	{"cargo", "Cargo", func(c *CustomerFields) *string { return &c.Cargo }},
	{"etapa", "Etapa", func(c *CustomerFields) *string { return &c.Etapa }},
	{"tipo_cliente", "Tipo Cliente", func(c *CustomerFields) *string { return &c.TipoCliente }},
	{"fecha", "Fecha", func(c *CustomerFields) *string { return &c.Fecha }},
	{"medio_contacto", "Medio Contacto", func(c *CustomerFields) *string { return &c.MedioContacto }},
	{"comentario", "Comentario", func(c *CustomerFields) *string { return &c.Comentario }},
	{"rubro", "Rubro", func(c *CustomerFields) *string { return &c.Rubro }},
}

var schemaByKey = func() map[string]Field {
	m := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		m[f.Key] = f
	}
	return m
}()

// IsField reports whether key names a schema field.
func IsField(key string) bool {
	_, ok := schemaByKey[key]
	return ok
}

// Value returns the value stored under key, or "" for unknown keys.
func (c *CustomerFields) Value(key string) string {
	f, ok := schemaByKey[key]
	if !ok {
		return ""
	}
	return f.Get(c)
}

// Apply merges patch over c. Unknown keys are ignored; callers validate first.
func (c *CustomerFields) Apply(patch map[string]string) {
	for k, v := range patch {
		if f, ok := schemaByKey[k]; ok {
			*f.get(c) = v
		}
	}
}

// Map returns the non-empty fields keyed by document key.
func (c *CustomerFields) Map() map[string]string {
	m := make(map[string]string)
	for _, f := range Schema {
		if v := f.Get(c); v != "" {
			m[f.Key] = v
		}
	}
	return m
}

// UnknownKeys returns the keys of patch that are not schema fields.
func UnknownKeys(patch map[string]string) []string {
	var out []string
	for k := range patch {
		if !IsField(k) {
			out = append(out, k)
		}
	}
	return out
}

// Matches reports whether the customer's nombre or empresa contains the
// lower-cased text.
func (c *Customer) Matches(lowerText string) bool {
	return strings.Contains(strings.ToLower(c.Nombre), lowerText) ||
		strings.Contains(strings.ToLower(c.Empresa), lowerText)
}
