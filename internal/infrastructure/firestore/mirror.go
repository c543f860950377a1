// Package firestore mirrors new reports into a Firestore collection through
// the REST API so responders' dashboards update in real time.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/infrastructure/googleapi"
	"github.com/civicwatch/civicwatch/internal/shared/utils/logutil"
)

const (
	DefaultBaseURL    = "https://firestore.googleapis.com"
	DefaultCollection = "reports"
	maxErrorBody      = 512
)

// value is a Firestore typed value. Exactly one field is set.
type value struct {
	StringValue    *string `json:"stringValue,omitempty"`
	IntegerValue   *string `json:"integerValue,omitempty"`
	BooleanValue   *bool   `json:"booleanValue,omitempty"`
	TimestampValue *string `json:"timestampValue,omitempty"`
}

type document struct {
	Fields map[string]value `json:"fields"`
}

func stringValue(s string) value { return value{StringValue: &s} }
func boolValue(b bool) value     { return value{BooleanValue: &b} }

func integerValue(n uint) value {
	s := strconv.FormatUint(uint64(n), 10)
	return value{IntegerValue: &s}
}

func timestampValue(t time.Time) value {
	s := t.UTC().Format(time.RFC3339Nano)
	return value{TimestampValue: &s}
}

// Mirror upserts one document per report, keyed by report id.
type Mirror struct {
	client     *http.Client
	baseURL    string
	projectID  string
	collection string
}

func NewMirror(client *http.Client, baseURL, projectID, collection string) *Mirror {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Mirror{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		projectID:  projectID,
		collection: collection,
	}
}

func NewMirrorFromCredentials(ctx context.Context, credentialsFile, baseURL, projectID, collection string) (*Mirror, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is not configured")
	}
	client, err := googleapi.NewHTTPClient(ctx, credentialsFile, googleapi.ScopeDatastore)
	if err != nil {
		return nil, err
	}
	return NewMirror(client, baseURL, projectID, collection), nil
}

func (m *Mirror) Name() string {
	return "firestore"
}

func (m *Mirror) documentURL(id uint) string {
	return fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents/%s/%d",
		m.baseURL, url.PathEscape(m.projectID), url.PathEscape(m.collection), id)
}

// Send implements notification.Sink. PATCH without an update mask replaces
// the whole document, creating it when missing.
func (m *Mirror) Send(ctx context.Context, p notification.Payload) error {
	occurred := p.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	doc := document{Fields: map[string]value{
		"id":          integerValue(p.ReportID),
		"type":        stringValue(p.Type),
		"severity":    stringValue(strings.ToLower(p.Severity)),
		"description": stringValue(p.Description),
		"location":    stringValue(p.Location),
		"timestamp":   timestampValue(occurred),
		"handled":     boolValue(false),
	}}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, m.documentURL(p.ReportID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("firestore request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
		return fmt.Errorf("firestore returned status %d: %s", resp.StatusCode, logutil.Truncate(string(raw), maxErrorBody))
	}
	return nil
}
