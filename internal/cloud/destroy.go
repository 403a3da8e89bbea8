package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultAPIBaseURL is the DigitalOcean control API.
const DefaultAPIBaseURL = "https://api.digitalocean.com"

// ErrMissingToken reports that no API credential was supplied. This is
// the one action failure treated as a configuration error rather than
// a transient fault.
var ErrMissingToken = errors.New("DIGITALOCEAN_TOKEN is not set")

// DropletClient issues authenticated requests against the droplets
// API.
type DropletClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewDropletClient builds a client for baseURL (DefaultAPIBaseURL when
// empty) using the given bearer token. An empty token is allowed at
// construction time; it only becomes fatal when Destroy is called.
func NewDropletClient(baseURL, token string) *DropletClient {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &DropletClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{},
	}
}

// HasToken reports whether a credential was supplied.
func (c *DropletClient) HasToken() bool {
	return strings.TrimSpace(c.token) != ""
}

// Destroy requests deletion of the droplet. Fire and forget: no
// retries and no completion polling, since the instance destroying
// itself makes post-call confirmation moot.
func (c *DropletClient) Destroy(ctx context.Context, dropletID string) error {
	if !c.HasToken() {
		return ErrMissingToken
	}

	url := fmt.Sprintf("%s/v2/droplets/%s", c.baseURL, dropletID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy droplet %s: %w", dropletID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("destroy droplet %s: API returned %d: %s",
			dropletID, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
