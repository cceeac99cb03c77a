package validator

import (
	"strings"
	"testing"

	"github.com/patientor/patientor/pkg/records"
)

func rating(r records.HealthCheckRating) *records.HealthCheckRating { return &r }

func validForm() records.EntryFormValues {
	return records.EntryFormValues{
		Type:              records.EntryTypeHealthCheck,
		Description:       "Yearly control visit",
		Date:              "2019-10-20",
		Specialist:        "MD House",
		HealthCheckRating: rating(records.RatingHealthy),
	}
}

func TestValidate_EntryForm(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(f *records.EntryFormValues)
		wantErr string
	}{
		{"valid health check", func(f *records.EntryFormValues) {}, ""},
		{"missing description", func(f *records.EntryFormValues) { f.Description = "" }, "description is required"},
		{"bad date", func(f *records.EntryFormValues) { f.Date = "20.10.2019" }, "date must be a date"},
		{"unknown type", func(f *records.EntryFormValues) { f.Type = "Dental" }, "entry_type"},
		{"rating out of range", func(f *records.EntryFormValues) { f.HealthCheckRating = rating(5) }, "between 0 and 3"},
		{"health check without rating", func(f *records.EntryFormValues) { f.HealthCheckRating = nil }, "healthCheckRating is required"},
		{"occupational without employer", func(f *records.EntryFormValues) {
			f.Type = records.EntryTypeOccupationalHealthcare
			f.HealthCheckRating = nil
		}, "employerName is required"},
		{"occupational with employer", func(f *records.EntryFormValues) {
			f.Type = records.EntryTypeOccupationalHealthcare
			f.EmployerName = "HyPD"
		}, ""},
		{"hospital with bad discharge", func(f *records.EntryFormValues) {
			f.Type = records.EntryTypeHospital
			f.Discharge = &records.Discharge{Date: "nope", Criteria: "healed"}
		}, "date must be a date"},
		{"empty diagnosis code", func(f *records.EntryFormValues) { f.DiagnosisCodes = []string{"M24.2", ""} }, "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := v.Validate(f)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_NewPatient(t *testing.T) {
	v := New()

	ok := records.NewPatient{Name: "John", Occupation: "Cop", Gender: records.GenderMale, DateOfBirth: "1970-01-01"}
	if err := v.Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := ok
	bad.Gender = "robot"
	if err := v.Validate(bad); err == nil {
		t.Error("expected error for unknown gender")
	}

	bad = ok
	bad.Name = ""
	if err := v.Validate(bad); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected name is required, got %v", err)
	}
}
