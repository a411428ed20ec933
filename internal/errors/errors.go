// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrDeleteNotConfirmed is returned when a delete arrives without confirmation.
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	// ErrFetchInProgress is returned when a page fetch is already running for the list.
	ErrFetchInProgress = errors.New("page fetch already in progress")
)

type ErrCustomerNotFound struct {
	ID string
}

func (e *ErrCustomerNotFound) Error() string {
	return fmt.Sprintf("customer with ID %s not found", e.ID)
}

func NewCustomerNotFound(id string) error {
	return &ErrCustomerNotFound{ID: id}
}

type ErrReportNotFound struct {
	Name string
}

func (e *ErrReportNotFound) Error() string {
	return fmt.Sprintf("report %s not found", e.Name)
}

func NewReportNotFound(name string) error {
	return &ErrReportNotFound{Name: name}
}

// Validation returns an error wrapping ErrValidation with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
