package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"clean request", "/api/patients?limit=10", "", http.StatusOK},
		{"encoded traversal", "/api/%2e%2e/etc", "", http.StatusBadRequest},
		{"null byte in query", "/api/patients?q=a%00b", "", http.StatusBadRequest},
		{"script in query", "/api/patients?q=%3Cscript%3Ealert(1)", "", http.StatusBadRequest},
		{"sql pattern is only logged", "/api/patients?q=1'+OR+1=1", "", http.StatusOK},
		{"oversized header", "/api/patients", string(make([]byte, maxHeaderValueSize+1)), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Note", tt.header)
			}
			c := e.NewContext(req, httptest.NewRecorder())
			err := Sanitize(zerolog.Nop())(okHandler)(c)

			if tt.want == http.StatusOK {
				if err != nil {
					t.Errorf("expected pass, got %v", err)
				}
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.want {
				t.Errorf("expected %d, got %v", tt.want, err)
			}
		})
	}
}
