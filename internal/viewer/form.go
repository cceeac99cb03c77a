package viewer

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/patientor/patientor/pkg/records"
)

// entryFormValues reads the add-entry form. Only the fields belonging to
// the selected entry type are carried over.
func entryFormValues(c echo.Context) (records.EntryFormValues, error) {
	form, err := c.FormParams()
	if err != nil {
		return records.EntryFormValues{}, err
	}

	v := records.EntryFormValues{
		Type:        records.EntryType(strings.TrimSpace(form.Get("type"))),
		Description: strings.TrimSpace(form.Get("description")),
		Date:        strings.TrimSpace(form.Get("date")),
		Specialist:  strings.TrimSpace(form.Get("specialist")),
	}
	for _, code := range form["diagnosisCodes"] {
		if code = strings.TrimSpace(code); code != "" {
			v.DiagnosisCodes = append(v.DiagnosisCodes, code)
		}
	}

	switch v.Type {
	case records.EntryTypeHealthCheck:
		if raw := strings.TrimSpace(form.Get("healthCheckRating")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				n = -1
			}
			r := records.HealthCheckRating(n)
			v.HealthCheckRating = &r
		}
	case records.EntryTypeHospital:
		date, criteria := strings.TrimSpace(form.Get("dischargeDate")), strings.TrimSpace(form.Get("dischargeCriteria"))
		if date != "" || criteria != "" {
			v.Discharge = &records.Discharge{Date: date, Criteria: criteria}
		}
	case records.EntryTypeOccupationalHealthcare:
		v.EmployerName = strings.TrimSpace(form.Get("employerName"))
		start, end := strings.TrimSpace(form.Get("sickLeaveStart")), strings.TrimSpace(form.Get("sickLeaveEnd"))
		if start != "" || end != "" {
			v.SickLeave = &records.SickLeave{StartDate: start, EndDate: end}
		}
	}
	return v, nil
}

func newPatientValues(c echo.Context) records.NewPatient {
	return records.NewPatient{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Occupation:  strings.TrimSpace(c.FormValue("occupation")),
		Gender:      records.Gender(strings.TrimSpace(c.FormValue("gender"))),
		DateOfBirth: strings.TrimSpace(c.FormValue("dateOfBirth")),
		SSN:         strings.TrimSpace(c.FormValue("ssn")),
	}
}
