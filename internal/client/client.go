// Package client talks to the records API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patientor/patientor/pkg/records"
)

// GenericErrorMessage is shown when the server gives no usable message.
const GenericErrorMessage = "Unknown error"

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("records api: status %d", e.Status)
	}
	return fmt.Sprintf("records api: status %d: %s", e.Status, e.Message)
}

// ErrorMessage returns the user-facing message for err: the server-provided
// message when there is one, otherwise GenericErrorMessage.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericErrorMessage
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout, Transport: cfg.Transport},
	}
}

func (c *Client) ListPatients(ctx context.Context) ([]records.Patient, error) {
	var out []records.Patient
	if err := c.do(ctx, http.MethodGet, "/patients", nil, &out); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id string) (records.Patient, error) {
	var out records.Patient
	if err := c.do(ctx, http.MethodGet, "/patients/"+url.PathEscape(id), nil, &out); err != nil {
		return records.Patient{}, fmt.Errorf("get patient %s: %w", id, err)
	}
	return out, nil
}

func (c *Client) CreatePatient(ctx context.Context, p records.NewPatient) (records.Patient, error) {
	var out records.Patient
	if err := c.do(ctx, http.MethodPost, "/patients", p, &out); err != nil {
		return records.Patient{}, fmt.Errorf("create patient: %w", err)
	}
	return out, nil
}

// AddEntry posts a new entry and returns the updated full patient record.
func (c *Client) AddEntry(ctx context.Context, patientID string, v records.EntryFormValues) (records.Patient, error) {
	var out records.Patient
	if err := c.do(ctx, http.MethodPost, "/patients/"+url.PathEscape(patientID)+"/entries", v, &out); err != nil {
		return records.Patient{}, fmt.Errorf("add entry for %s: %w", patientID, err)
	}
	return out, nil
}

func (c *Client) ListDiagnoses(ctx context.Context) ([]records.Diagnosis, error) {
	var out []records.Diagnosis
	if err := c.do(ctx, http.MethodGet, "/diagnoses", nil, &out); err != nil {
		return nil, fmt.Errorf("list diagnoses: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts {"message": ...} or {"error": ...} from an error
// body. Plain-text bodies are used as-is.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
