package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"ticketing/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

// Fields lists the offending field names in declaration order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, e.Field)
	}
	return fields
}

type ClaimValidator struct {
	validate *validator.Validate
}

func NewClaimValidator() *ClaimValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so clients can map errors back to their payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &ClaimValidator{
		validate: v,
	}
}

func (v *ClaimValidator) Validate(claim *model.ClaimRequest) error {
	if claim == nil {
		return ValidationErrors{{Field: "body", Message: "is required"}}
	}

	if err := v.validate.Struct(claim); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if strings.TrimSpace(claim.SeatID) == "" {
		return ValidationErrors{{Field: "seatId", Message: "is required"}}
	}

	return nil
}

func (v *ClaimValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message(err),
		})
	}

	return validationErrors
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	default:
		return fmt.Sprintf("failed the %q rule", err.Tag())
	}
}
