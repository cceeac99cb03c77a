package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/patientor/patientor/pkg/records"
)

// WriteEntryText writes d as an indented block.
func WriteEntryText(w io.Writer, d Detail) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s\n", d.Date, d.Kind, d.Description)
	fmt.Fprintf(&b, "    specialist: %s\n", d.Specialist)
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "    %s: %s\n", strings.ToLower(f.Label), f.Value)
	}
	for _, dx := range d.Diagnoses {
		fmt.Fprintf(&b, "    - %s\n", dx)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WritePatientText writes the patient header followed by its entries.
func WritePatientText(w io.Writer, p records.Patient, diagnoses map[string]records.Diagnosis) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	fmt.Fprintf(&b, "gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "ssn: %s\n", p.SSN)
	fmt.Fprintf(&b, "occupation: %s\n", p.Occupation)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if len(p.Entries) == 0 {
		_, err := io.WriteString(w, "\nno entries\n")
		return err
	}
	if _, err := io.WriteString(w, "\nentries\n"); err != nil {
		return err
	}
	for _, e := range p.Entries {
		if err := WriteEntryText(w, Describe(e, diagnoses)); err != nil {
			return err
		}
	}
	return nil
}
