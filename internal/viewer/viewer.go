// Package viewer keeps the client-side view of the records API: a state
// store fed by API calls, plus the web pages that render it.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/patientor/patientor/internal/client"
	"github.com/patientor/patientor/internal/state"
	"github.com/patientor/patientor/internal/validator"
	"github.com/patientor/patientor/pkg/records"
)

// ErrPatientNotFound is returned by OpenPatient when the patient is neither
// cached nor retrievable.
var ErrPatientNotFound = errors.New("patient not found")

// API is the subset of the records API the viewer needs. *client.Client
// implements it.
type API interface {
	ListPatients(ctx context.Context) ([]records.Patient, error)
	GetPatient(ctx context.Context, id string) (records.Patient, error)
	CreatePatient(ctx context.Context, p records.NewPatient) (records.Patient, error)
	AddEntry(ctx context.Context, patientID string, v records.EntryFormValues) (records.Patient, error)
	ListDiagnoses(ctx context.Context) ([]records.Diagnosis, error)
}

// FormError is a client-side validation failure. Its message is shown to
// the user as is.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

// ErrorMessage returns the text to show for a failed submission.
func ErrorMessage(err error) string {
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if errors.Is(err, ErrPatientNotFound) {
		return "patient not found"
	}
	return client.ErrorMessage(err)
}

type Viewer struct {
	store    *state.Store
	api      API
	validate *validator.Validator
	logger   zerolog.Logger
}

func New(store *state.Store, api API, v *validator.Validator, logger zerolog.Logger) *Viewer {
	return &Viewer{store: store, api: api, validate: v, logger: logger}
}

func (v *Viewer) State() state.State {
	return v.store.State()
}

func (v *Viewer) LoadPatients(ctx context.Context) error {
	list, err := v.api.ListPatients(ctx)
	if err != nil {
		return fmt.Errorf("loading patients: %w", err)
	}
	v.store.Dispatch(state.SetPatientList(list))
	return nil
}

func (v *Viewer) LoadDiagnoses(ctx context.Context) error {
	list, err := v.api.ListDiagnoses(ctx)
	if err != nil {
		return fmt.Errorf("loading diagnoses: %w", err)
	}
	v.store.Dispatch(state.SetDiagnosisList(list))
	return nil
}

// Bootstrap loads patients and diagnoses. One failing does not stop the
// other.
func (v *Viewer) Bootstrap(ctx context.Context) error {
	return errors.Join(v.LoadPatients(ctx), v.LoadDiagnoses(ctx))
}

// OpenPatient returns the patient with full details, fetching them when the
// cached record is only a summary. A failed fetch is logged and the cached
// summary is returned instead.
func (v *Viewer) OpenPatient(ctx context.Context, id string) (records.Patient, error) {
	cached, ok := v.store.State().Patient(id)
	if ok && cached.HasDetails() {
		return cached, nil
	}

	p, err := v.api.GetPatient(ctx, id)
	if err != nil {
		v.logger.Error().Err(err).Str("patient_id", id).Msg("fetching patient details")
		if ok {
			return cached, nil
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return records.Patient{}, ErrPatientNotFound
		}
		return records.Patient{}, err
	}

	next := v.store.Dispatch(state.UpdatePatient(p))
	if merged, ok := next.Patient(id); ok {
		return merged, nil
	}
	return p, nil
}

func (v *Viewer) AddPatient(ctx context.Context, np records.NewPatient) (records.Patient, error) {
	if err := v.validate.Validate(np); err != nil {
		return records.Patient{}, &FormError{Message: err.Error()}
	}
	p, err := v.api.CreatePatient(ctx, np)
	if err != nil {
		return records.Patient{}, err
	}
	v.store.Dispatch(state.AddPatient(p))
	return p, nil
}

// SubmitEntry validates values, posts the entry and stores the returned
// full record.
func (v *Viewer) SubmitEntry(ctx context.Context, patientID string, values records.EntryFormValues) (records.Patient, error) {
	if err := v.validate.Validate(values); err != nil {
		return records.Patient{}, &FormError{Message: err.Error()}
	}
	p, err := v.api.AddEntry(ctx, patientID, values)
	if err != nil {
		v.logger.Warn().Err(err).Str("patient_id", patientID).Msg("adding entry")
		return records.Patient{}, err
	}
	v.store.Dispatch(state.UpdatePatient(p))
	return p, nil
}
