// Package pinsvc talks to the off-chain pin generation service. The service
// synthesizes a per-player image and returns the content identifier the
// mint transaction requires as an argument.
package pinsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is an HTTP client for the pin generation service.
type Client struct {
	baseURL string
	client  *http.Client
}

// Pin is a generated pin: a preview URL plus the on-chain content id.
type Pin struct {
	ImageURL  string `json:"imageUrl"`
	ContentID string `json:"contentId"`
}

// NewClient creates a pin service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// GeneratePin asks the service to synthesize a pin for the given identity
// token. The returned ContentID is required by the mint call; an empty one
// is an error here so the orchestrator never submits without it.
func (c *Client) GeneratePin(ctx context.Context, identityID string) (*Pin, error) {
	if identityID == "" {
		return nil, fmt.Errorf("identity id is required")
	}

	body, err := c.postJSON(ctx, "/v1/pins", map[string]string{"identityId": identityID})
	if err != nil {
		return nil, err
	}

	var pin Pin
	if err := json.Unmarshal(body, &pin); err != nil {
		return nil, fmt.Errorf("parsing pin service response: %w", err)
	}
	if pin.ContentID == "" {
		return nil, fmt.Errorf("pin service returned no content id")
	}
	return &pin, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
