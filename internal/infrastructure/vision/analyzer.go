// Package vision runs emergency triage against the Google Cloud Vision
// images:annotate endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/civicwatch/civicwatch/internal/application/report/triage"
	"github.com/civicwatch/civicwatch/internal/infrastructure/googleapi"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils/logutil"
)

const (
	DefaultEndpoint = "https://vision.googleapis.com"
	maxLabels       = 20
	maxErrorBody    = 512
	// Label and safe-search answers for one image stay well under this.
	maxResponseBody = 1 << 20
)

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []struct {
			Description string  `json:"description"`
			Score       float64 `json:"score"`
		} `json:"labelAnnotations"`
		SafeSearchAnnotation struct {
			Violence string `json:"violence"`
		} `json:"safeSearchAnnotation"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// Analyzer asks Cloud Vision for labels and a safe-search violence
// likelihood and scores them with the configured rules. Every failure
// degrades to a non-emergency verdict.
type Analyzer struct {
	client   *http.Client
	endpoint string
	rules    triage.ScoringRules
	logger   logger.Interface
}

func NewAnalyzer(client *http.Client, endpoint string, rules triage.ScoringRules, log logger.Interface) *Analyzer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Analyzer{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		rules:    rules,
		logger:   log,
	}
}

// NewAnalyzerFromCredentials builds the analyzer with a service-account token source.
func NewAnalyzerFromCredentials(ctx context.Context, credentialsFile, endpoint string, rules triage.ScoringRules, log logger.Interface) (*Analyzer, error) {
	client, err := googleapi.NewHTTPClient(ctx, credentialsFile, googleapi.ScopeCloudPlatform)
	if err != nil {
		return nil, err
	}
	return NewAnalyzer(client, endpoint, rules, log), nil
}

func (a *Analyzer) Analyze(ctx context.Context, img triage.Image) triage.Verdict {
	labels, violence, err := a.annotate(ctx, img.Data)
	if err != nil {
		a.logger.Warnw("vision triage failed, treating image as non-emergency",
			"filename", img.Filename,
			"error", err,
		)
		return triage.Verdict{Strategy: triage.StrategyVision}
	}

	v := a.rules.Score(labels, violence)
	a.logger.Infow("vision triage finished",
		"filename", img.Filename,
		"emergency", v.Emergency,
		"score", v.Score,
		"labels", len(labels),
	)
	return v
}

func (a *Analyzer) annotate(ctx context.Context, data []byte) ([]triage.Label, triage.Likelihood, error) {
	body, err := json.Marshal(annotateRequest{Requests: []imageRequest{{
		Image: imageContent{Content: base64.StdEncoding.EncodeToString(data)},
		Features: []feature{
			{Type: "LABEL_DETECTION", MaxResults: maxLabels},
			{Type: "SAFE_SEARCH_DETECTION"},
		},
	}}})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/v1/images:annotate", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read vision response: %w", err)
	}
	if len(raw) > maxResponseBody {
		return nil, "", fmt.Errorf("vision response exceeds %d bytes", maxResponseBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("vision returned status %d: %s", resp.StatusCode, logutil.Truncate(string(raw), maxErrorBody))
	}

	var parsed annotateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(parsed.Responses) == 0 {
		return nil, "", fmt.Errorf("vision returned no responses")
	}
	first := parsed.Responses[0]
	if first.Error != nil {
		return nil, "", fmt.Errorf("vision error %d: %s", first.Error.Code, first.Error.Message)
	}

	labels := make([]triage.Label, 0, len(first.LabelAnnotations))
	for _, l := range first.LabelAnnotations {
		labels = append(labels, triage.Label{Description: l.Description, Score: l.Score})
	}
	return labels, triage.Likelihood(first.SafeSearchAnnotation.Violence), nil
}
