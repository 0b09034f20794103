package passkeysdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the passkey service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Origin is sent as the Origin header. Browsers always send it on
	// cross-origin POSTs; the service itself derives the WebAuthn origin
	// from the request URL.
	Origin string
}

// NewClient creates a client with a 10 second timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// RegisterPrepare validates an invite and returns credential creation options.
func (c *Client) RegisterPrepare(ctx context.Context, req RegisterPrepareRequest) (*RegisterPrepareResponse, error) {
	var out RegisterPrepareResponse
	if err := c.post(ctx, "/register/prepare", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterFinish submits an attestation and returns a session for the new user.
func (c *Client) RegisterFinish(ctx context.Context, req RegisterFinishRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/register/finish", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginPrepare returns credential request options.
func (c *Client) LoginPrepare(ctx context.Context, req LoginPrepareRequest) (*LoginPrepareResponse, error) {
	var out LoginPrepareResponse
	if err := c.post(ctx, "/login/prepare", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginFinish submits an assertion and returns a session.
func (c *Client) LoginFinish(ctx context.Context, req LoginFinishRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/login/finish", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateInvite mints an invite. token must belong to an active admin.
func (c *Client) GenerateInvite(ctx context.Context, token string, req GenerateInviteRequest) (*GenerateInviteResponse, error) {
	var out GenerateInviteResponse
	if err := c.post(ctx, "/invite/generate", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account and its credentials. token must belong to an
// active admin other than the target.
func (c *Client) DeleteUser(ctx context.Context, token string, req DeleteUserRequest) (*DeleteUserResponse, error) {
	var out DeleteUserResponse
	if err := c.post(ctx, "/user/delete", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service can reach its database.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, token, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return decodeJSON(resp, out, http.StatusOK)
}

func (c *Client) doRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.Origin != "" {
		req.Header.Set("Origin", c.Origin)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON decodes a JSON response into target, or returns an *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
