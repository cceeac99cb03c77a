package state

import "github.com/patientor/patientor/pkg/records"

type ActionType string

const (
	ActionSetPatientList   ActionType = "SET_PATIENT_LIST"
	ActionSetDiagnosisList ActionType = "SET_DIAGNOSIS_LIST"
	ActionAddPatient       ActionType = "ADD_PATIENT"
	ActionUpdatePatient    ActionType = "UPDATE_PATIENT"
)

// Action is a tagged payload for Reduce. Only the payload field matching
// Type is read.
type Action struct {
	Type      ActionType
	Patients  []records.Patient
	Diagnoses []records.Diagnosis
	Patient   records.Patient
}

func SetPatientList(patients []records.Patient) Action {
	return Action{Type: ActionSetPatientList, Patients: patients}
}

func SetDiagnosisList(diagnoses []records.Diagnosis) Action {
	return Action{Type: ActionSetDiagnosisList, Diagnoses: diagnoses}
}

func AddPatient(patient records.Patient) Action {
	return Action{Type: ActionAddPatient, Patient: patient}
}

func UpdatePatient(patient records.Patient) Action {
	return Action{Type: ActionUpdatePatient, Patient: patient}
}
