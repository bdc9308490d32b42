// Package service holds the validation rules and use cases of the
// itinerary API.  Services depend on small store interfaces so they can be
// exercised without a database.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/thai-itinerary/internal/repository"
)

// ValidationError reports input that was rejected before any write.
// Field is the JSON name of the offending input, dotted for nested items
// ("accommodations[0].hotel_id").
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// asValidation converts an unresolved foreign key into a ValidationError
// and passes every other error through.
func asValidation(err error) error {
	var mr *repository.MissingReferenceError
	if errors.As(err, &mr) {
		return &ValidationError{Field: mr.Field, Message: mr.Error()}
	}
	return err
}
