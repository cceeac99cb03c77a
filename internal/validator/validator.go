package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/patientor/patientor/pkg/records"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Custom validators
	v.RegisterValidation("gender", validateGender)
	v.RegisterValidation("entry_type", validateEntryType)
	v.RegisterValidation("health_check_rating", validateHealthCheckRating)
	v.RegisterStructValidation(validateEntryForm, records.EntryFormValues{})

	return &Validator{validate: v}
}

// Validate checks i and flattens field errors into a single readable error.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "health_check_rating":
		return fmt.Sprintf("%s must be between 0 and 3", field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func validateGender(fl validator.FieldLevel) bool {
	return records.Gender(fl.Field().String()).Valid()
}

func validateEntryType(fl validator.FieldLevel) bool {
	return records.EntryType(fl.Field().String()).Valid()
}

func validateHealthCheckRating(fl validator.FieldLevel) bool {
	return records.HealthCheckRating(fl.Field().Int()).Valid()
}

// validateEntryForm enforces the fields each entry kind requires.
func validateEntryForm(sl validator.StructLevel) {
	v := sl.Current().Interface().(records.EntryFormValues)

	switch v.Type {
	case records.EntryTypeHealthCheck:
		if v.HealthCheckRating == nil {
			sl.ReportError(v.HealthCheckRating, "HealthCheckRating", "HealthCheckRating", "required", "")
		}
	case records.EntryTypeOccupationalHealthcare:
		if strings.TrimSpace(v.EmployerName) == "" {
			sl.ReportError(v.EmployerName, "EmployerName", "EmployerName", "required", "")
		}
	}
}
