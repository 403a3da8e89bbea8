// Package cloud talks to the DigitalOcean metadata service and
// droplets API so an idle instance can tear itself down.
package cloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMetadataURL is DigitalOcean's link-local metadata endpoint
// returning the current droplet's ID as plain text. Only reachable
// from the droplet itself.
const DefaultMetadataURL = "http://169.254.169.254/metadata/v1/id"

// metadataTimeout bounds the identity lookup so an unreachable
// metadata endpoint cannot stall the action indefinitely.
const metadataTimeout = 5 * time.Second

// IdentityResolver fetches the current droplet's ID from the instance
// metadata service.
type IdentityResolver struct {
	url    string
	client *http.Client
}

// NewIdentityResolver builds a resolver against url, falling back to
// DefaultMetadataURL when empty.
func NewIdentityResolver(url string) *IdentityResolver {
	if url == "" {
		url = DefaultMetadataURL
	}
	return &IdentityResolver{
		url:    url,
		client: &http.Client{Timeout: metadataTimeout},
	}
}

// Resolve performs a single metadata request. Any transport error or
// non-success status yields an error; there are no retries.
func (r *IdentityResolver) Resolve(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return "", fmt.Errorf("build metadata request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query metadata service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("read metadata response: %w", err)
	}

	id := strings.TrimSpace(string(body))
	if id == "" {
		return "", fmt.Errorf("metadata service returned an empty droplet id")
	}
	return id, nil
}
