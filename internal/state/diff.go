package state

import (
	"reflect"
	"slices"

	"github.com/patientor/patientor/pkg/records"
)

// Changes lists what a dispatch altered. IDs are sorted.
type Changes struct {
	Added            []string
	Updated          []string
	DiagnosesChanged bool
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Updated) == 0 && !c.DiagnosesChanged
}

// Diff compares two states. A patient counts as updated when any of its
// fields or entries differ.
func Diff(prev, next State) Changes {
	var ch Changes
	for id, p := range next.Patients {
		old, ok := prev.Patients[id]
		switch {
		case !ok:
			ch.Added = append(ch.Added, id)
		case patientChanged(old, p):
			ch.Updated = append(ch.Updated, id)
		}
	}
	slices.Sort(ch.Added)
	slices.Sort(ch.Updated)

	if len(prev.Diagnoses) != len(next.Diagnoses) {
		ch.DiagnosesChanged = true
	} else {
		for code, d := range next.Diagnoses {
			if old, ok := prev.Diagnoses[code]; !ok || old != d {
				ch.DiagnosesChanged = true
				break
			}
		}
	}
	return ch
}

func patientChanged(a, b records.Patient) bool {
	if a.Name != b.Name || a.Occupation != b.Occupation || a.Gender != b.Gender ||
		a.DateOfBirth != b.DateOfBirth || a.SSN != b.SSN {
		return true
	}
	// Entries going from nil to empty is a summary gaining details.
	return !reflect.DeepEqual(a.Entries, b.Entries)
}
