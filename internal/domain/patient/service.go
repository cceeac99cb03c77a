package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/patientor/patientor/internal/validator"
	"github.com/patientor/patientor/pkg/records"
)

type Service struct {
	patients  PatientRepository
	diagnoses DiagnosisRepository
	validate  *validator.Validator
	newID     func() string
}

func NewService(patients PatientRepository, diagnoses DiagnosisRepository, v *validator.Validator) *Service {
	return &Service{
		patients:  patients,
		diagnoses: diagnoses,
		validate:  v,
		newID:     func() string { return uuid.New().String() },
	}
}

// -- Patient --

func (s *Service) ListPatients(ctx context.Context) ([]records.Patient, error) {
	list, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []records.Patient{}
	}
	return list, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*records.Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) CreatePatient(ctx context.Context, np records.NewPatient) (*records.Patient, error) {
	np.Name = strings.TrimSpace(np.Name)
	np.Occupation = strings.TrimSpace(np.Occupation)
	if err := s.validate.Validate(np); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}

	p := &records.Patient{
		ID:          s.newID(),
		Name:        np.Name,
		Occupation:  np.Occupation,
		Gender:      np.Gender,
		DateOfBirth: np.DateOfBirth,
		SSN:         np.SSN,
		Entries:     records.Entries{},
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddEntry validates v, appends the new entry and returns the updated full
// patient record. Diagnosis codes must exist in the diagnosis list.
func (s *Service) AddEntry(ctx context.Context, patientID string, v records.EntryFormValues) (*records.Patient, error) {
	if err := s.validate.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	if err := s.checkDiagnosisCodes(ctx, v.DiagnosisCodes); err != nil {
		return nil, err
	}

	e, err := records.NewEntry(s.newID(), v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	if err := s.patients.AddEntry(ctx, patientID, e); err != nil {
		return nil, err
	}
	return s.patients.GetByID(ctx, patientID)
}

func (s *Service) checkDiagnosisCodes(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	list, err := s.diagnoses.List(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(list))
	for _, d := range list {
		known[d.Code] = true
	}
	var unknown []string
	for _, c := range codes {
		if !known[c] {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown diagnosis codes: %s", ErrInvalid, strings.Join(unknown, ", "))
	}
	return nil
}

// -- Diagnosis --

func (s *Service) ListDiagnoses(ctx context.Context) ([]records.Diagnosis, error) {
	list, err := s.diagnoses.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []records.Diagnosis{}
	}
	return list, nil
}
