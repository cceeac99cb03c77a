// Package render turns entries and patients into displayable form: a plain
// Detail value, HTML components for the web viewer and text for the CLI.
package render

import (
	"fmt"

	"github.com/patientor/patientor/pkg/records"
)

// InvariantError is the panic value raised when an entry of an unknown kind
// reaches the renderer. Entries decoded from the wire are always one of the
// three known kinds, so this signals a programming error upstream.
type InvariantError struct {
	Entry records.Entry
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("render: unhandled entry kind %T", e.Entry)
}

// DiagnosisLine is one diagnosis code on an entry. Name is empty when the
// code is not in the diagnosis list (yet).
type DiagnosisLine struct {
	Code string
	Name string
}

func (d DiagnosisLine) String() string {
	if d.Name == "" {
		return d.Code
	}
	return d.Code + " " + d.Name
}

type Field struct {
	Label string
	Value string
}

// Detail is the kind-independent display form of an entry.
type Detail struct {
	Kind        records.EntryType
	Icon        string
	Date        string
	Description string
	Specialist  string
	Diagnoses   []DiagnosisLine
	Fields      []Field
}

var ratingLabels = [...]string{
	records.RatingHealthy:      "Healthy",
	records.RatingLowRisk:      "Low risk",
	records.RatingHighRisk:     "High risk",
	records.RatingCriticalRisk: "Critical risk",
}

// RatingLabel returns the display label for r, or "Unknown" when r is out of
// range.
func RatingLabel(r records.HealthCheckRating) string {
	if !r.Valid() {
		return "Unknown"
	}
	return ratingLabels[r]
}

// Describe builds the Detail for entry, resolving diagnosis codes against
// diagnoses. Unresolved codes are shown by code alone. It panics with
// *InvariantError for an entry kind it does not know.
func Describe(entry records.Entry, diagnoses map[string]records.Diagnosis) Detail {
	var d Detail

	switch e := entry.(type) {
	case records.HospitalEntry:
		d.Icon = "hospital"
		if e.Discharge != nil {
			d.Fields = append(d.Fields, Field{"Discharge", e.Discharge.Date + " " + e.Discharge.Criteria})
		}
	case records.HealthCheckEntry:
		d.Icon = "stethoscope"
		d.Fields = append(d.Fields, Field{"Health rating", RatingLabel(e.HealthCheckRating)})
	case records.OccupationalHealthcareEntry:
		d.Icon = "briefcase"
		d.Fields = append(d.Fields, Field{"Employer", e.EmployerName})
		if e.SickLeave != nil {
			d.Fields = append(d.Fields, Field{"Sick leave", e.SickLeave.StartDate + " - " + e.SickLeave.EndDate})
		}
	default:
		panic(&InvariantError{Entry: entry})
	}

	base := entry.Common()
	d.Kind = entry.Kind()
	d.Date = base.Date
	d.Description = base.Description
	d.Specialist = base.Specialist
	for _, code := range base.DiagnosisCodes {
		d.Diagnoses = append(d.Diagnoses, DiagnosisLine{Code: code, Name: diagnoses[code].Name})
	}
	return d
}
