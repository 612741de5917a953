package apperr

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// UnavailableError reports a requested resource (model, language, task) that the data directory
// does not provide, together with the values it does provide.
type UnavailableError struct {
	Resource  string
	Name      string
	Available []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("data for this %s is not available in the directory: %s, supported %ss: [%s]",
		e.Resource, e.Name, e.Resource, strings.Join(e.Available, ", "))
}

func NewUnavailable(resource, name string, available []string) *UnavailableError {
	return &UnavailableError{Resource: resource, Name: name, Available: available}
}
