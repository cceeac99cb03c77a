package patient

import (
	"context"
	"errors"

	"github.com/patientor/patientor/pkg/records"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

type PatientRepository interface {
	Create(ctx context.Context, p *records.Patient) error
	// GetByID returns the full record, entries included.
	GetByID(ctx context.Context, id string) (*records.Patient, error)
	// List returns summary records: no ssn, no entries.
	List(ctx context.Context) ([]records.Patient, error)
	AddEntry(ctx context.Context, patientID string, e records.Entry) error
}

type DiagnosisRepository interface {
	List(ctx context.Context) ([]records.Diagnosis, error)
	Upsert(ctx context.Context, d records.Diagnosis) error
}
