// internal/model/client_change.go
package model

import "time"

type ChangeOp string

const (
	ChangeCreate ChangeOp = "create"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ClientChange is published after every confirmed write to the clientes collection.
type ClientChange struct {
	Op ChangeOp  `json:"op"`
	ID string    `json:"id"`
	At time.Time `json:"at"`
}
