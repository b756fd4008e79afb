// Package client talks to a running neurodose server.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/lazypower/neurodose/internal/domain"
)

const (
	defaultServerURL = "http://127.0.0.1:37778"
	httpTimeout      = 5 * time.Second
)

// Client is a thin JSON client for the neurodose API.
type Client struct {
	http      *http.Client
	serverURL string
}

// New creates a client for serverURL. An empty serverURL falls back to
// NEURODOSE_URL, then http://127.0.0.1:37778.
func New(serverURL string) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("NEURODOSE_URL")
	}
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	return &Client{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: serverURL,
	}
}

// StatusError is a non-2xx response. Body holds the server's error JSON.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(e.Body, &body) == nil && body.Error != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, body.Error)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Do sends a request with an optional JSON body and returns the response body.
func (c *Client) Do(method, path string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, c.serverURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: data}
	}
	return data, nil
}

// Get sends a GET request. Returns response body.
func (c *Client) Get(path string) ([]byte, error) {
	return c.Do(http.MethodGet, path, nil)
}

// Post sends a POST request with JSON body. Returns response body.
func (c *Client) Post(path string, body []byte) ([]byte, error) {
	return c.Do(http.MethodPost, path, body)
}

// Healthy checks if the server is reachable.
func (c *Client) Healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// AddDose logs a dose through the server. force skips the daily-max check.
func (c *Client) AddDose(compoundID string, amountMg float64, takenAt time.Time, notes string, force bool) (domain.DoseEvent, error) {
	req := map[string]any{
		"compound_id": compoundID,
		"amount_mg":   amountMg,
		"notes":       notes,
	}
	if !takenAt.IsZero() {
		req["taken_at"] = takenAt
	}
	body, err := json.Marshal(req)
	if err != nil {
		return domain.DoseEvent{}, err
	}
	path := "/api/doses"
	if force {
		path += "?force=true"
	}
	data, err := c.Post(path, body)
	if err != nil {
		return domain.DoseEvent{}, err
	}
	var d domain.DoseEvent
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.DoseEvent{}, fmt.Errorf("decode dose: %w", err)
	}
	return d, nil
}

// DeleteDose removes a dose through the server.
func (c *Client) DeleteDose(id string) error {
	_, err := c.Do(http.MethodDelete, "/api/doses/"+url.PathEscape(id), nil)
	return err
}
