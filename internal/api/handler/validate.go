// Package handler implements the HTTP handlers for the Skycast API.
package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/skycast/skycast/internal/api/models"
)

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// fieldErrors converts validator errors to response field errors.
func fieldErrors(err error) []models.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, models.FieldError{
			Field:   fe.Field(),
			Message: "failed validation: " + fe.Tag(),
			Code:    fe.Tag(),
		})
	}
	return out
}
