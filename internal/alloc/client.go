package alloc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to a remote allocation service. Every call is bounded by the
// configured timeout; the caller treats any error as "allocator
// unavailable" and rejects the task, nothing is retried.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given base endpoint,
// e.g. http://localhost:8090
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Allocate posts the request and decodes the decision
func (c *Client) Allocate(ctx context.Context, req *AllocationRequest) (*AllocationDecision, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode allocation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/v1/allocate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build allocation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call allocator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("allocator returned status %d", resp.StatusCode)
	}

	var decision AllocationDecision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, fmt.Errorf("decode allocation decision: %w", err)
	}
	return &decision, nil
}

// Healthy probes the allocator's health endpoint
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
