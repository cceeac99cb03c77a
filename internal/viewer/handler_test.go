package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patientor/patientor/pkg/records"
)

func newTestServer(t *testing.T, api *fakeAPI) (*echo.Echo, *Viewer) {
	t.Helper()
	v := newTestViewer(api)
	require.NoError(t, v.Bootstrap(context.Background()))
	e := echo.New()
	NewHandler(v, 20, zerolog.Nop()).RegisterRoutes(e)
	return e, v
}

func do(e *echo.Echo, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPatientList_Page(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<a href="/patients/p1">Martin Riggs</a>`)
	assert.Contains(t, body, "Dana Scully")
	assert.Less(t, strings.Index(body, "Dana Scully"), strings.Index(body, "Martin Riggs"))
}

func TestPatientList_Paginates(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodGet, "/?limit=1&offset=1", nil)

	body := rec.Body.String()
	assert.Contains(t, body, "Martin Riggs")
	assert.NotContains(t, body, "Dana Scully")
	assert.Contains(t, body, `href="/?offset=0&limit=1"`)
}

func TestPatientPage_RendersEntries(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodGet, "/patients/p1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ssn: 300179-77A")
	assert.Contains(t, body, "M24.2 Disorder of ligament")
	assert.Contains(t, body, "Employer: HyPD")
}

func TestPatientPage_NotFound(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodGet, "/patients/nobody", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitEntry_RedirectsOnSuccess(t *testing.T) {
	api := newFakeAPI()
	e, v := newTestServer(t, api)

	rec := do(e, http.MethodPost, "/patients/p1/entries", url.Values{
		"type":              {"HealthCheck"},
		"description":       {"Yearly control"},
		"date":              {"2021-03-03"},
		"specialist":        {"Dr Who"},
		"diagnosisCodes":    {"M24.2"},
		"healthCheckRating": {"2"},
		"employerName":      {"ignored for health checks"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/patients/p1", rec.Header().Get("Location"))
	require.Len(t, api.added, 1)
	assert.Equal(t, records.RatingHighRisk, *api.added[0].HealthCheckRating)
	assert.Empty(t, api.added[0].EmployerName)
	p, _ := v.State().Patient("p1")
	assert.Len(t, p.Entries, 2)
}

func TestSubmitEntry_ShowsErrorAndKeepsValues(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodPost, "/patients/p1/entries", url.Values{
		"type":         {"OccupationalHealthcare"},
		"description":  {"Back pain <b>"},
		"date":         {"2021-03-03"},
		"specialist":   {"Dr Who"},
		"employerName": {""},
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error: employerName is required")
	assert.Contains(t, body, `value="Back pain &lt;b&gt;"`)
}

func TestAddPatient_Redirects(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodPost, "/patients", url.Values{
		"name": {"Sarah Connor"}, "occupation": {"Waitress"}, "gender": {"female"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/patients/new", rec.Header().Get("Location"))
}

func TestAddPatient_ShowsError(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())

	rec := do(e, http.MethodPost, "/patients", url.Values{"name": {"Nameless"}, "gender": {"female"}})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: occupation is required")
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t, newFakeAPI())
	rec := do(e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
