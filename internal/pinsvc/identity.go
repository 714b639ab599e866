package pinsvc

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Login obtains an identity token for address by signing a server-issued
// challenge. The token is required input to GeneratePin — the mint machine
// refuses to start without one.
func (c *Client) Login(ctx context.Context, address string, sign func(message []byte) ([]byte, error)) (string, error) {
	challenge, err := c.requestChallenge(ctx, address)
	if err != nil {
		return "", err
	}

	sig, err := sign([]byte(challenge))
	if err != nil {
		return "", fmt.Errorf("signing challenge: %w", err)
	}

	return c.verifyChallenge(ctx, address, challenge, "0x"+hex.EncodeToString(sig))
}

func (c *Client) requestChallenge(ctx context.Context, address string) (string, error) {
	body, err := c.postJSON(ctx, "/v1/auth/challenge", map[string]string{"address": address})
	if err != nil {
		return "", err
	}
	var out struct {
		Challenge string `json:"challenge"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing challenge response: %w", err)
	}
	if out.Challenge == "" {
		return "", fmt.Errorf("pin service returned empty challenge")
	}
	return out.Challenge, nil
}

func (c *Client) verifyChallenge(ctx context.Context, address, challenge, signature string) (string, error) {
	body, err := c.postJSON(ctx, "/v1/auth/verify", map[string]string{
		"address":   address,
		"challenge": challenge,
		"signature": signature,
	})
	if err != nil {
		return "", err
	}
	var out struct {
		IdentityToken string `json:"identityToken"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing verify response: %w", err)
	}
	if out.IdentityToken == "" {
		return "", fmt.Errorf("pin service returned no identity token")
	}
	return out.IdentityToken, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pin service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading pin service response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pin service returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}
