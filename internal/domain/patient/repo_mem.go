package patient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/patientor/patientor/pkg/records"
)

// memPatientRepo keeps patients in insertion order. Returned records are
// copies; callers cannot reach the stored slices.
type memPatientRepo struct {
	mu       sync.RWMutex
	order    []string
	patients map[string]records.Patient
}

func NewMemPatientRepo() PatientRepository {
	return &memPatientRepo{patients: make(map[string]records.Patient)}
}

func (r *memPatientRepo) Create(_ context.Context, p *records.Patient) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Entries == nil {
		p.Entries = records.Entries{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; ok {
		return fmt.Errorf("patient %s already exists: %w", p.ID, ErrInvalid)
	}
	r.order = append(r.order, p.ID)
	r.patients[p.ID] = clonePatient(*p)
	return nil
}

func (r *memPatientRepo) GetByID(_ context.Context, id string) (*records.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	out := clonePatient(p)
	return &out, nil
}

func (r *memPatientRepo) List(_ context.Context) ([]records.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]records.Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.patients[id].Summary())
	}
	return out, nil
}

func (r *memPatientRepo) AddEntry(_ context.Context, patientID string, e records.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	entries := make(records.Entries, 0, len(p.Entries)+1)
	entries = append(entries, p.Entries...)
	p.Entries = append(entries, e)
	r.patients[patientID] = p
	return nil
}

func clonePatient(p records.Patient) records.Patient {
	if p.Entries != nil {
		p.Entries = append(records.Entries{}, p.Entries...)
	}
	return p
}

type memDiagnosisRepo struct {
	mu        sync.RWMutex
	diagnoses map[string]records.Diagnosis
}

func NewMemDiagnosisRepo() DiagnosisRepository {
	return &memDiagnosisRepo{diagnoses: make(map[string]records.Diagnosis)}
}

func (r *memDiagnosisRepo) List(_ context.Context) ([]records.Diagnosis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]records.Diagnosis, 0, len(r.diagnoses))
	for _, d := range r.diagnoses {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memDiagnosisRepo) Upsert(_ context.Context, d records.Diagnosis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnoses[d.Code] = d
	return nil
}
