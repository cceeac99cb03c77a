// Package records holds the patient, diagnosis and entry types shared by the
// records API, its client and the viewer state.
package records

// Diagnosis is a coded diagnosis. Code is the unique key.
type Diagnosis struct {
	Code  string `json:"code" db:"code"`
	Name  string `json:"name" db:"name"`
	Latin string `json:"latin,omitempty" db:"latin"`
}

// Patient is either a summary record (from the list endpoint) or a full
// record (from the detail endpoint). A summary has an empty SSN and nil
// Entries; a full record with no entries carries an empty, non-nil slice.
type Patient struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Occupation  string  `json:"occupation" db:"occupation"`
	Gender      Gender  `json:"gender" db:"gender"`
	DateOfBirth string  `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	SSN         string  `json:"ssn,omitempty" db:"ssn"`
	Entries     Entries `json:"entries,omitzero"`
}

// HasDetails reports whether the record came from a detail fetch. A patient
// registered without an SSN still counts once its entries are present.
func (p Patient) HasDetails() bool {
	return p.SSN != "" || p.Entries != nil
}

// Summary strips the fields the list endpoint does not expose.
func (p Patient) Summary() Patient {
	p.SSN = ""
	p.Entries = nil
	return p
}

// NewPatient is the payload for creating a patient.
type NewPatient struct {
	Name        string `json:"name" validate:"required"`
	Occupation  string `json:"occupation" validate:"required"`
	Gender      Gender `json:"gender" validate:"required,gender"`
	DateOfBirth string `json:"dateOfBirth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SSN         string `json:"ssn,omitempty"`
}

// EntryFormValues is the add-entry form payload. Type selects the variant;
// the variant-specific fields are ignored for the other kinds.
type EntryFormValues struct {
	Type              EntryType          `json:"type" form:"type" validate:"required,entry_type"`
	Description       string             `json:"description" form:"description" validate:"required"`
	Date              string             `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Specialist        string             `json:"specialist" form:"specialist" validate:"required"`
	DiagnosisCodes    []string           `json:"diagnosisCodes,omitempty" form:"diagnosisCodes" validate:"omitempty,dive,required"`
	HealthCheckRating *HealthCheckRating `json:"healthCheckRating,omitempty" validate:"omitempty,health_check_rating"`
	Discharge         *Discharge         `json:"discharge,omitempty"`
	EmployerName      string             `json:"employerName,omitempty" form:"employerName"`
	SickLeave         *SickLeave         `json:"sickLeave,omitempty"`
}
