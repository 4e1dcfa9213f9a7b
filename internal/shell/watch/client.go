// Package watch consumes the read-only HTTP API of the in-VM monitoring
// daemon. The daemon's internals are out of scope; only its JSON contract on
// port 9090 is read here.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultPort is the fixed port the monitoring daemon listens on.
const DefaultPort = 9090

// defaultTimeout bounds each request; the daemon may simply not be up yet.
const defaultTimeout = 3 * time.Second

// =============================================================================
// Contract Types
// =============================================================================

// ContainerState is one container's tracked state.
type ContainerState struct {
	ID           string `json:"id"`
	Image        string `json:"image"`
	Status       string `json:"status"`
	RestartCount int    `json:"restart_count"`
	StartedAt    string `json:"started_at,omitempty"`
	StoppedAt    string `json:"stopped_at,omitempty"`
	LastExitCode *int   `json:"last_exit_code,omitempty"`
}

// Snapshot is the daemon's current state.
type Snapshot struct {
	Containers map[string]ContainerState `json:"containers"`
	Issues     []Issue                   `json:"issues"`
}

// Event is one container lifecycle event.
type Event struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Container string `json:"container"`
	ExitCode  *int   `json:"exit_code,omitempty"`
}

// Issue is one detected problem, optionally with a remediation hint.
type Issue struct {
	Severity       string `json:"severity"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
	Resolved       bool   `json:"resolved"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

type issuesResponse struct {
	Issues []Issue `json:"issues"`
	Count  int     `json:"count"`
}

// =============================================================================
// Client
// =============================================================================

// Client fetches monitoring data from a deployed instance.
type Client struct {
	port       int
	httpClient *http.Client
}

// NewClient creates a monitoring client. A zero port uses DefaultPort.
func NewClient(port int) *Client {
	if port == 0 {
		port = DefaultPort
	}
	return &Client{
		port:       port,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Status fetches the daemon's current state snapshot.
func (c *Client) Status(ctx context.Context, host string) (*Snapshot, error) {
	var snap Snapshot
	if err := c.getJSON(ctx, host, "/status", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Events fetches up to limit recent container events.
func (c *Client) Events(ctx context.Context, host string, limit int) ([]Event, error) {
	var resp eventsResponse
	if err := c.getJSON(ctx, host, fmt.Sprintf("/events?limit=%d", limit), &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Issues fetches the daemon's detected issues.
func (c *Client) Issues(ctx context.Context, host string) ([]Issue, error) {
	var resp issuesResponse
	if err := c.getJSON(ctx, host, "/issues", &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

func (c *Client) getJSON(ctx context.Context, host, path string, target any) error {
	url := fmt.Sprintf("http://%s:%d%s", host, c.port, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
