// internal/model/dashboard.go
package model

type DashboardStats struct {
	Total           int    `json:"total"`
	Finalizado      int    `json:"finalizado"`
	ContactoInicial int    `json:"contacto_inicial"`
	RetomarContacto int    `json:"retomar_contacto"`
	Loaded          bool   `json:"loaded"`
	Error           string `json:"error,omitempty"`
}
