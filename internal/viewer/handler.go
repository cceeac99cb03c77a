package viewer

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/patientor/patientor/internal/render"
	"github.com/patientor/patientor/pkg/pagination"
	"github.com/patientor/patientor/pkg/records"
)

// Handler serves the viewer pages.
type Handler struct {
	viewer   *Viewer
	pageSize int
	logger   zerolog.Logger
}

func NewHandler(v *Viewer, pageSize int, logger zerolog.Logger) *Handler {
	return &Handler{viewer: v, pageSize: pageSize, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.PatientList)
	e.POST("/patients", h.AddPatient)
	e.GET("/patients/:id", h.PatientPage)
	e.POST("/patients/:id/entries", h.SubmitEntry)
	e.GET("/health", h.Health)
	e.GET("/static/live.js", h.LiveScript)
}

// PatientList refreshes the list from the API and renders one page of it.
// When the refresh fails the cached list is shown.
func (h *Handler) PatientList(c echo.Context) error {
	if err := h.viewer.LoadPatients(c.Request().Context()); err != nil {
		h.logger.Warn().Err(err).Msg("refreshing patient list")
	}
	return h.renderList(c, http.StatusOK, "")
}

func (h *Handler) renderList(c echo.Context, status int, formErr string) error {
	all := sortedPatients(h.viewer.State().Patients)
	p := pagination.FromContext(c, h.pageSize)
	pg := render.Pager{
		Offset:     p.Offset,
		Limit:      p.Limit,
		Total:      len(all),
		PrevOffset: p.PreviousOffset(),
		NextOffset: p.NextOffset(),
		HasPrev:    p.HasPrevious(),
		HasNext:    p.HasNext(len(all)),
	}
	return page(c, status, render.PatientListPage(pagination.Window(all, p), pg, formErr))
}

func (h *Handler) AddPatient(c echo.Context) error {
	p, err := h.viewer.AddPatient(c.Request().Context(), newPatientValues(c))
	if err != nil {
		return h.renderList(c, http.StatusBadRequest, ErrorMessage(err))
	}
	return c.Redirect(http.StatusSeeOther, "/patients/"+p.ID)
}

func (h *Handler) PatientPage(c echo.Context) error {
	p, err := h.viewer.OpenPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return patientError(err)
	}
	return page(c, http.StatusOK, render.PatientPage(p, h.viewer.State().Diagnoses, render.EntryForm{
		Values: records.EntryFormValues{Type: records.EntryTypeHealthCheck},
	}))
}

// SubmitEntry adds an entry and redirects back to the patient. On failure
// the page is shown again with the submitted values and the error.
func (h *Handler) SubmitEntry(c echo.Context) error {
	id := c.Param("id")
	values, err := entryFormValues(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}

	if _, err := h.viewer.SubmitEntry(c.Request().Context(), id, values); err != nil {
		p, openErr := h.viewer.OpenPatient(c.Request().Context(), id)
		if openErr != nil {
			return patientError(openErr)
		}
		form := render.EntryForm{Values: values, Error: ErrorMessage(err)}
		return page(c, http.StatusBadRequest, render.PatientPage(p, h.viewer.State().Diagnoses, form))
	}
	return c.Redirect(http.StatusSeeOther, "/patients/"+id)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func patientError(err error) error {
	if errors.Is(err, ErrPatientNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return echo.NewHTTPError(http.StatusBadGateway, "records api unavailable").SetInternal(err)
}

// page renders comp fully before writing so a render failure, including a
// panic, never leaves a half-written response.
func page(c echo.Context, status int, comp templ.Component) error {
	var buf bytes.Buffer
	if err := comp.Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return c.HTMLBlob(status, buf.Bytes())
}

func sortedPatients(m map[string]records.Patient) []records.Patient {
	out := make([]records.Patient, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
