// Package googleapi builds authenticated HTTP clients for Google REST APIs
// from a service-account key file.
package googleapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ScopeCloudPlatform = "https://www.googleapis.com/auth/cloud-platform"
	ScopeDatastore     = "https://www.googleapis.com/auth/datastore"

	// httpClientTimeout is the ceiling for a single call; callers pass shorter deadlines via ctx.
	httpClientTimeout = 30 * time.Second
)

// NewHTTPClient reads a service-account JSON key and returns a client that
// attaches fresh bearer tokens to every request.
func NewHTTPClient(ctx context.Context, credentialsFile string, scopes ...string) (*http.Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("google credentials file is not configured")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google credentials: %w", err)
	}
	return NewHTTPClientFromTokenSource(ctx, creds.TokenSource), nil
}

func NewHTTPClientFromTokenSource(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)
	client.Timeout = httpClientTimeout
	return client
}
