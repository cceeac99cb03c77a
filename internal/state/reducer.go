// Package state is the viewer's normalized cache of patients and diagnoses.
// State values are immutable: Reduce returns a new State and never writes to
// the maps of the one it was given.
package state

import "github.com/patientor/patientor/pkg/records"

// State is the cached view of the records API.
type State struct {
	Patients  map[string]records.Patient
	Diagnoses map[string]records.Diagnosis
}

// Empty returns a State with no patients or diagnoses.
func Empty() State {
	return State{
		Patients:  map[string]records.Patient{},
		Diagnoses: map[string]records.Diagnosis{},
	}
}

// Patient looks up a cached patient.
func (s State) Patient(id string) (records.Patient, bool) {
	p, ok := s.Patients[id]
	return p, ok
}

// Reduce applies action to s. Unknown action types return s unchanged.
func Reduce(s State, action Action) State {
	switch action.Type {
	case ActionSetPatientList:
		if len(action.Patients) == 0 {
			return s
		}
		incoming := make(map[string]records.Patient, len(action.Patients))
		for _, p := range action.Patients {
			incoming[p.ID] = p
		}
		s.Patients = merge(incoming, s.Patients)
		return s

	case ActionSetDiagnosisList:
		if len(action.Diagnoses) == 0 {
			return s
		}
		incoming := make(map[string]records.Diagnosis, len(action.Diagnoses))
		for _, d := range action.Diagnoses {
			incoming[d.Code] = d
		}
		s.Diagnoses = merge(incoming, s.Diagnoses)
		return s

	case ActionAddPatient:
		s.Patients = with(s.Patients, action.Patient.ID, action.Patient)
		return s

	case ActionUpdatePatient:
		p := action.Patient
		if existing, ok := s.Patients[p.ID]; ok {
			existing.SSN = p.SSN
			existing.Entries = p.Entries
			p = existing
		}
		s.Patients = with(s.Patients, p.ID, p)
		return s

	default:
		return s
	}
}

// merge returns incoming overlaid by existing: on a key present in both the
// existing value wins. incoming is consumed and returned.
func merge[K comparable, V any](incoming, existing map[K]V) map[K]V {
	for k, v := range existing {
		incoming[k] = v
	}
	return incoming
}

// with returns a copy of m with key set to v.
func with[K comparable, V any](m map[K]V, key K, v V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, old := range m {
		out[k] = old
	}
	out[key] = v
	return out
}
