// internal/model/report.go
package model

import "time"

type Report struct {
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	CreatedAt time.Time  `json:"created_at"`
	Clientes  []Customer `json:"clientes,omitempty"`
}
