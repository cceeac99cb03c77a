package render

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/patientor/patientor/pkg/records"
)

func esc(s string) string { return templ.EscapeString(s) }

// Pager describes the window of a paginated list.
type Pager struct {
	Offset     int
	Limit      int
	Total      int
	PrevOffset int
	NextOffset int
	HasPrev    bool
	HasNext    bool
}

// EntryForm carries the add-entry form state between submissions.
type EntryForm struct {
	Values records.EntryFormValues
	Error  string
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><script src="/static/live.js" defer></script></head><body><header><h1><a href="/">Patientor</a></h1></header><main>`, esc(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// EntryComponent renders one entry detail.
func EntryComponent(d Detail) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section class="entry entry-%s"><h4><i class="icon %s"></i> %s</h4>`, esc(strings.ToLower(string(d.Kind))), esc(d.Icon), esc(d.Date))
		fmt.Fprintf(&b, `<p><em>%s</em></p>`, esc(d.Description))
		for _, f := range d.Fields {
			fmt.Fprintf(&b, `<p>%s: %s</p>`, esc(f.Label), esc(f.Value))
		}
		if len(d.Diagnoses) > 0 {
			b.WriteString(`<ul class="diagnoses">`)
			for _, dx := range d.Diagnoses {
				fmt.Fprintf(&b, `<li>%s</li>`, esc(dx.String()))
			}
			b.WriteString(`</ul>`)
		}
		fmt.Fprintf(&b, `<p>diagnosed by %s</p></section>`, esc(d.Specialist))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PatientListPage renders the patient table and the add-patient form.
func PatientListPage(patients []records.Patient, pg Pager, formErr string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h3>Patient list</h3><table><thead><tr><th>Name</th><th>Gender</th><th>Occupation</th></tr></thead><tbody>`)
		for _, p := range patients {
			fmt.Fprintf(&b, `<tr><td><a href="/patients/%s">%s</a></td><td>%s</td><td>%s</td></tr>`,
				esc(p.ID), esc(p.Name), esc(string(p.Gender)), esc(p.Occupation))
		}
		b.WriteString(`</tbody></table><nav>`)
		if pg.HasPrev {
			fmt.Fprintf(&b, `<a href="/?offset=%d&limit=%d">previous</a> `, pg.PrevOffset, pg.Limit)
		}
		fmt.Fprintf(&b, `<span>%d patients</span>`, pg.Total)
		if pg.HasNext {
			fmt.Fprintf(&b, ` <a href="/?offset=%d&limit=%d">next</a>`, pg.NextOffset, pg.Limit)
		}
		b.WriteString(`</nav><h3>Add new patient</h3>`)
		if formErr != "" {
			fmt.Fprintf(&b, `<div class="error">Error: %s</div>`, esc(formErr))
		}
		b.WriteString(`<form method="post" action="/patients">` +
			`<label>Name <input name="name"></label>` +
			`<label>Social security number <input name="ssn"></label>` +
			`<label>Date of birth <input name="dateOfBirth" placeholder="YYYY-MM-DD"></label>` +
			`<label>Occupation <input name="occupation"></label>` +
			`<label>Gender <select name="gender"><option value="other">Other</option><option value="male">Male</option><option value="female">Female</option></select></label>` +
			`<button type="submit">Add</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
	return Layout("Patients", body)
}

// PatientPage renders a patient with its entries and the add-entry form.
func PatientPage(p records.Patient, diagnoses map[string]records.Diagnosis, form EntryForm) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div><h3>%s</h3><p><span>gender: %s</span><br><span>ssn: %s</span><br><span>occupation: %s</span></p>`,
			esc(p.Name), esc(string(p.Gender)), esc(p.SSN), esc(p.Occupation))
		b.WriteString(`<h4>entries</h4>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if err := EntryComponent(Describe(e, diagnoses)).Render(ctx, w); err != nil {
				return err
			}
		}
		return entryFormComponent(p.ID, diagnoses, form).Render(ctx, w)
	})
	return Layout(p.Name, body)
}

func entryFormComponent(patientID string, diagnoses map[string]records.Diagnosis, form EntryForm) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		v := form.Values
		var b strings.Builder
		b.WriteString(`<h3>Add new entry</h3>`)
		if form.Error != "" {
			fmt.Fprintf(&b, `<div class="error">Error: %s</div>`, esc(form.Error))
		}
		fmt.Fprintf(&b, `<form method="post" action="/patients/%s/entries">`, esc(patientID))
		b.WriteString(`<label>Type <select name="type">`)
		for _, t := range []records.EntryType{records.EntryTypeHealthCheck, records.EntryTypeHospital, records.EntryTypeOccupationalHealthcare} {
			fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, esc(string(t)), selected(v.Type == t), esc(string(t)))
		}
		b.WriteString(`</select></label>`)
		fmt.Fprintf(&b, `<label>Description <input name="description" value="%s"></label>`, esc(v.Description))
		fmt.Fprintf(&b, `<label>Date <input name="date" placeholder="YYYY-MM-DD" value="%s"></label>`, esc(v.Date))
		fmt.Fprintf(&b, `<label>Specialist <input name="specialist" value="%s"></label>`, esc(v.Specialist))

		b.WriteString(`<label>Diagnoses <select name="diagnosisCodes" multiple>`)
		for _, code := range slices.Sorted(maps.Keys(diagnoses)) {
			fmt.Fprintf(&b, `<option value="%s"%s>%s</option>`, esc(code), selected(slices.Contains(v.DiagnosisCodes, code)), esc(code+" "+diagnoses[code].Name))
		}
		b.WriteString(`</select></label>`)

		b.WriteString(`<label>Health check rating <select name="healthCheckRating">`)
		for r := records.RatingHealthy; r <= records.RatingCriticalRisk; r++ {
			isSel := v.HealthCheckRating != nil && *v.HealthCheckRating == r
			fmt.Fprintf(&b, `<option value="%d"%s>%s</option>`, r, selected(isSel), esc(RatingLabel(r)))
		}
		b.WriteString(`</select></label>`)

		var discharge records.Discharge
		if v.Discharge != nil {
			discharge = *v.Discharge
		}
		fmt.Fprintf(&b, `<fieldset><legend>Hospital</legend>`+
			`<label>Discharge date <input name="dischargeDate" placeholder="YYYY-MM-DD" value="%s"></label>`+
			`<label>Discharge criteria <input name="dischargeCriteria" value="%s"></label></fieldset>`,
			esc(discharge.Date), esc(discharge.Criteria))

		var leave records.SickLeave
		if v.SickLeave != nil {
			leave = *v.SickLeave
		}
		fmt.Fprintf(&b, `<fieldset><legend>Occupational healthcare</legend><label>Employer <input name="employerName" value="%s"></label>`, esc(v.EmployerName))
		fmt.Fprintf(&b, `<label>Sick leave start <input name="sickLeaveStart" placeholder="YYYY-MM-DD" value="%s"></label>`+
			`<label>Sick leave end <input name="sickLeaveEnd" placeholder="YYYY-MM-DD" value="%s"></label></fieldset>`,
			esc(leave.StartDate), esc(leave.EndDate))
		b.WriteString(`<a href="/">Cancel</a> <button type="submit">Add</button></form></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func selected(ok bool) string {
	if ok {
		return " selected"
	}
	return ""
}
