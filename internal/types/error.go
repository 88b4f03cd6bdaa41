package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type (
	// Error body returned by the HTTP surface
	Error struct {
		Fields  *map[string]string `json:"fields,omitempty"`
		Message string             `json:"message"          validate:"required"`
	}
)

func StringError(err string) Error {
	return Error{Message: err}
}

// Field level detail for validator failures, a bare message otherwise
func ValidationError(err error) Error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return Error{Message: "validation error"}
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields[fieldError.Field()] = fmt.Sprintf("failed check %q", fieldError.Tag())
	}

	return Error{Message: "validation error", Fields: &fields}
}
