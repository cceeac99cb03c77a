package patient

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/patientor/patientor/internal/platform/auth"
	"github.com/patientor/patientor/pkg/records"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	return h, e
}

func TestHandler_ListPatients(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListPatients(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ssn") || strings.Contains(rec.Body.String(), "entries") {
		t.Errorf("expected summaries only, got %s", rec.Body.String())
	}
}

func TestHandler_GetPatient(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(riggs)

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p records.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.SSN != "300179-77A" || len(p.Entries) != 1 {
		t.Errorf("unexpected patient %+v", p)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	err := h.GetPatient(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_CreatePatient(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Sarah Connor","occupation":"Waitress","gender":"female"}`
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreatePatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_AddEntry(t *testing.T) {
	h, e := newTestHandler()

	body := `{"type":"HealthCheck","description":"Checkup","date":"2020-02-02","specialist":"Dr Who","healthCheckRating":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(riggs)

	if err := h.AddEntry(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p records.Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if len(p.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(p.Entries))
	}
}

func TestHandler_AddEntry_BadRequestMessage(t *testing.T) {
	h, e := newTestHandler()

	body := `{"type":"HealthCheck","description":"","date":"2020-02-02","specialist":"Dr Who","healthCheckRating":1}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(riggs)

	err := h.AddEntry(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if msg, _ := he.Message.(string); !strings.Contains(msg, "description is required") {
		t.Errorf("expected validation message, got %v", he.Message)
	}
}

func TestHandler_RoutesRequireRole(t *testing.T) {
	h, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/diagnoses", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 without roles, got %d", rec.Code)
	}

	e2 := echo.New()
	e2.Use(auth.DevAuthMiddleware())
	h.RegisterRoutes(e2.Group("/api"))
	rec = httptest.NewRecorder()
	e2.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/diagnoses", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with dev auth, got %d", rec.Code)
	}
	var list []records.Diagnosis
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != len(DemoDiagnoses) {
		t.Errorf("expected %d diagnoses, got %d", len(DemoDiagnoses), len(list))
	}
}
