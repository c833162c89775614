// Package client is the polling side of the alert subsystem: it fetches due
// alerts from the server, drops the ones this session already showed, and
// hands the rest to a Presenter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/reminder"
)

// Fetcher loads one kind of alerts for the logged-in user.
type Fetcher interface {
	FetchAlerts(ctx context.Context, kind reminder.Kind) ([]reminder.Alert, error)
	SetToken(token string)
}

var kindPaths = map[reminder.Kind]string{
	reminder.KindMedicine:    "/api/v1/medicines/alerts/check",
	reminder.KindAppointment: "/api/v1/appointments/alerts/check",
}

// APIClient calls the alert check endpoints.
type APIClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{baseURL: baseURL, http: httpClient}
}

// SetToken sets the bearer token; empty logs out.
func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// FetchAlerts implements Fetcher. Every returned alert is tagged with kind.
func (c *APIClient) FetchAlerts(ctx context.Context, kind reminder.Kind) ([]reminder.Alert, error) {
	path, ok := kindPaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown alert kind %q", kind)
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" {
		return nil, fmt.Errorf("not logged in")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s alerts: %w", kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s alerts: %w", kind, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s alerts: HTTP %d", kind, resp.StatusCode)
	}

	alerts, err := decodeAlerts(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s alerts: %w", kind, err)
	}
	for i := range alerts {
		alerts[i].Kind = kind
	}
	return alerts, nil
}

// decodeAlerts accepts {"alerts": [...]} or a bare array.
func decodeAlerts(body []byte) ([]reminder.Alert, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var alerts []reminder.Alert
		if err := json.Unmarshal(trimmed, &alerts); err != nil {
			return nil, err
		}
		return alerts, nil
	}
	var wrapped struct {
		Alerts []reminder.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Alerts, nil
}
