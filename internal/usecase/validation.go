package usecase

import (
	"errors"

	"go-reservation-store/pkg/validator"

	playground "github.com/go-playground/validator/v10"
)

// validateInput turns struct tag violations into a *ValidationError. Other
// failures (e.g. a non-struct argument) are programming errors and returned as is.
func validateInput(v *validator.CustomValidator, input interface{}) error {
	err := v.Validate(input)
	if err == nil {
		return nil
	}

	var validationErrors playground.ValidationErrors
	if errors.As(err, &validationErrors) {
		return &ValidationError{Fields: v.FormatValidationErrors(err)}
	}
	return err
}
