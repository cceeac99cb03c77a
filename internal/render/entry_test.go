package render

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patientor/patientor/pkg/records"
)

var testDiagnoses = map[string]records.Diagnosis{
	"M24.2": {Code: "M24.2", Name: "Disorder of ligament"},
	"Z57.1": {Code: "Z57.1", Name: "Occupational exposure to radiation"},
}

type rogueEntry struct {
	records.BaseEntry
}

func (rogueEntry) Kind() records.EntryType { return "Dental" }

func TestDescribe_HealthCheckRatingLabel(t *testing.T) {
	e := records.HealthCheckEntry{
		BaseEntry:         records.BaseEntry{ID: "1", Date: "2019-10-20", Description: "Yearly control visit", Specialist: "MD House"},
		HealthCheckRating: records.RatingHighRisk,
	}

	d := Describe(e, testDiagnoses)

	assert.Equal(t, records.EntryTypeHealthCheck, d.Kind)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, Field{"Health rating", "High risk"}, d.Fields[0])
}

func TestRatingLabel(t *testing.T) {
	assert.Equal(t, "Healthy", RatingLabel(records.RatingHealthy))
	assert.Equal(t, "Low risk", RatingLabel(records.RatingLowRisk))
	assert.Equal(t, "High risk", RatingLabel(records.RatingHighRisk))
	assert.Equal(t, "Critical risk", RatingLabel(records.RatingCriticalRisk))
	assert.Equal(t, "Unknown", RatingLabel(4))
	assert.Equal(t, "Unknown", RatingLabel(-1))
}

func TestDescribe_UnresolvedDiagnosisFallsBackToCode(t *testing.T) {
	e := records.HospitalEntry{
		BaseEntry: records.BaseEntry{ID: "h", DiagnosisCodes: []string{"M24.2", "S62.5"}},
		Discharge: &records.Discharge{Date: "2015-01-16", Criteria: "Thumb has healed."},
	}

	d := Describe(e, testDiagnoses)

	require.Len(t, d.Diagnoses, 2)
	assert.Equal(t, "M24.2 Disorder of ligament", d.Diagnoses[0].String())
	assert.Equal(t, "S62.5", d.Diagnoses[1].String())
	assert.Equal(t, Field{"Discharge", "2015-01-16 Thumb has healed."}, d.Fields[0])
}

func TestDescribe_NilDiagnosisMap(t *testing.T) {
	e := records.OccupationalHealthcareEntry{
		BaseEntry:    records.BaseEntry{DiagnosisCodes: []string{"Z57.1"}},
		EmployerName: "HyPD",
		SickLeave:    &records.SickLeave{StartDate: "2019-08-05", EndDate: "2019-08-28"},
	}

	d := Describe(e, nil)

	assert.Equal(t, "Z57.1", d.Diagnoses[0].String())
	assert.Equal(t, []Field{{"Employer", "HyPD"}, {"Sick leave", "2019-08-05 - 2019-08-28"}}, d.Fields)
	assert.Equal(t, "briefcase", d.Icon)
}

func TestDescribe_UnknownKindPanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*InvariantError)
		require.True(t, ok, "expected *InvariantError, got %T", r)
		assert.Contains(t, err.Error(), "rogueEntry")
	}()
	Describe(rogueEntry{}, testDiagnoses)
}

func TestWriteEntryText(t *testing.T) {
	var buf bytes.Buffer
	d := Describe(records.HealthCheckEntry{
		BaseEntry:         records.BaseEntry{Date: "2019-10-20", Description: "control", Specialist: "MD House", DiagnosisCodes: []string{"M24.2"}},
		HealthCheckRating: records.RatingHealthy,
	}, testDiagnoses)

	require.NoError(t, WriteEntryText(&buf, d))
	out := buf.String()
	assert.Contains(t, out, "2019-10-20 [HealthCheck] control")
	assert.Contains(t, out, "health rating: Healthy")
	assert.Contains(t, out, "- M24.2 Disorder of ligament")
}

func TestWritePatientText_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	p := records.Patient{ID: "1", Name: "John McClane", Gender: records.GenderMale, SSN: "090786-122X", Occupation: "New york city cop"}
	require.NoError(t, WritePatientText(&buf, p, nil))
	assert.Contains(t, buf.String(), "ssn: 090786-122X")
	assert.Contains(t, buf.String(), "no entries")
}

func TestEntryComponent_EscapesHTML(t *testing.T) {
	var buf bytes.Buffer
	d := Detail{Kind: records.EntryTypeHospital, Description: "<script>x</script>", Specialist: "Dr & Co"}
	require.NoError(t, EntryComponent(d).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "Dr &amp; Co")
}

func TestPatientPage_RendersEntriesAndForm(t *testing.T) {
	var buf bytes.Buffer
	p := records.Patient{
		ID: "d2773336", Name: "Martin Riggs", SSN: "300179-77A",
		Entries: records.Entries{
			records.HealthCheckEntry{BaseEntry: records.BaseEntry{ID: "e1", Date: "2019-10-20"}, HealthCheckRating: records.RatingLowRisk},
		},
	}
	form := EntryForm{Error: "Value of date incorrect"}

	require.NoError(t, PatientPage(p, testDiagnoses, form).Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, "Martin Riggs")
	assert.Contains(t, out, "Low risk")
	assert.Contains(t, out, `action="/patients/d2773336/entries"`)
	assert.Contains(t, out, "Error: Value of date incorrect")
	assert.True(t, strings.Index(out, "M24.2") < strings.Index(out, "Z57.1"), "diagnoses should be sorted")
}

func TestPatientListPage(t *testing.T) {
	var buf bytes.Buffer
	patients := []records.Patient{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	pg := Pager{Offset: 0, Limit: 2, Total: 3, NextOffset: 2, HasNext: true}

	require.NoError(t, PatientListPage(patients, pg, "").Render(context.Background(), &buf))
	out := buf.String()
	assert.Contains(t, out, `<a href="/patients/1">A</a>`)
	assert.Contains(t, out, "/?offset=2&limit=2")
	assert.NotContains(t, out, "previous")
}

func TestLayout_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	body := templ.ComponentFunc(func(context.Context, io.Writer) error { return nil })
	require.NoError(t, Layout(`<b>"Riggs"</b>`, body).Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "<title>&lt;b&gt;&#34;Riggs&#34;&lt;/b&gt;</title>")
}
