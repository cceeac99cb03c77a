package records

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry is one medical record attached to a patient. The set of kinds is
// closed: HospitalEntry, HealthCheckEntry and OccupationalHealthcareEntry.
type Entry interface {
	Kind() EntryType
	Common() BaseEntry
	isEntry()
}

// BaseEntry carries the fields every entry kind has. DiagnosisCodes are weak
// references into the diagnosis list and may not resolve.
type BaseEntry struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	Date           string   `json:"date"`
	Specialist     string   `json:"specialist"`
	DiagnosisCodes []string `json:"diagnosisCodes,omitempty"`
}

func (b BaseEntry) Common() BaseEntry { return b }

func (BaseEntry) isEntry() {}

type Discharge struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Criteria string `json:"criteria" validate:"required"`
}

type SickLeave struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

type HospitalEntry struct {
	BaseEntry
	Discharge *Discharge `json:"discharge,omitempty"`
}

func (HospitalEntry) Kind() EntryType { return EntryTypeHospital }

type HealthCheckEntry struct {
	BaseEntry
	HealthCheckRating HealthCheckRating `json:"healthCheckRating"`
}

func (HealthCheckEntry) Kind() EntryType { return EntryTypeHealthCheck }

type OccupationalHealthcareEntry struct {
	BaseEntry
	EmployerName string     `json:"employerName"`
	SickLeave    *SickLeave `json:"sickLeave,omitempty"`
}

func (OccupationalHealthcareEntry) Kind() EntryType { return EntryTypeOccupationalHealthcare }

func (e HospitalEntry) MarshalJSON() ([]byte, error) {
	type plain HospitalEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		plain
	}{e.Kind(), plain(e)})
}

func (e HealthCheckEntry) MarshalJSON() ([]byte, error) {
	type plain HealthCheckEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		plain
	}{e.Kind(), plain(e)})
}

func (e OccupationalHealthcareEntry) MarshalJSON() ([]byte, error) {
	type plain OccupationalHealthcareEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		plain
	}{e.Kind(), plain(e)})
}

// UnmarshalJSON rejects ratings outside the four known levels.
func (r *HealthCheckRating) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("health check rating: %w", err)
	}
	if !HealthCheckRating(n).Valid() {
		return fmt.Errorf("health check rating %d out of range", n)
	}
	*r = HealthCheckRating(n)
	return nil
}

// DecodeEntry decodes a single entry using its "type" discriminator.
func DecodeEntry(data []byte) (Entry, error) {
	var head struct {
		Type EntryType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}

	switch head.Type {
	case EntryTypeHospital:
		var e HospitalEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode hospital entry: %w", err)
		}
		return e, nil
	case EntryTypeHealthCheck:
		var e HealthCheckEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode health check entry: %w", err)
		}
		return e, nil
	case EntryTypeOccupationalHealthcare:
		var e OccupationalHealthcareEntry
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode occupational healthcare entry: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("decode entry: unknown type %q", head.Type)
	}
}

// Entries is an ordered list of entries. A nil Entries means the list was
// never fetched; it is omitted on the wire.
type Entries []Entry

func (es *Entries) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*es = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode entries: %w", err)
	}
	out := make(Entries, 0, len(raw))
	for i, r := range raw {
		e, err := DecodeEntry(r)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, e)
	}
	*es = out
	return nil
}

// NewEntry builds the entry variant selected by v.Type. The caller is
// expected to have validated v.
func NewEntry(id string, v EntryFormValues) (Entry, error) {
	base := BaseEntry{
		ID:             id,
		Description:    v.Description,
		Date:           v.Date,
		Specialist:     v.Specialist,
		DiagnosisCodes: v.DiagnosisCodes,
	}

	switch v.Type {
	case EntryTypeHospital:
		return HospitalEntry{BaseEntry: base, Discharge: v.Discharge}, nil
	case EntryTypeHealthCheck:
		if v.HealthCheckRating == nil {
			return nil, fmt.Errorf("healthCheckRating is required for %s entries", v.Type)
		}
		return HealthCheckEntry{BaseEntry: base, HealthCheckRating: *v.HealthCheckRating}, nil
	case EntryTypeOccupationalHealthcare:
		return OccupationalHealthcareEntry{BaseEntry: base, EmployerName: v.EmployerName, SickLeave: v.SickLeave}, nil
	default:
		return nil, fmt.Errorf("unknown entry type %q", v.Type)
	}
}
