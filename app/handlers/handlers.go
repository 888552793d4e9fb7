// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"github.com/go-playground/validator/v10"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

func validationDetails(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		details = append(details, getValidationErrorMessage(fieldError))
	}
	return details
}
