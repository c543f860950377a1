// Package triage decides whether a submitted photo suggests an emergency.
// Verdicts are advisory: they never gate acceptance of a report, and every
// failure inside an analyzer degrades to a non-emergency verdict.
package triage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/civicwatch/civicwatch/internal/domain/report"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const (
	StrategyFilename = "filename"
	StrategyVision   = "vision"
	StrategyNone     = "none"
)

// Image is the uploaded photo as received.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

type Verdict struct {
	Emergency bool
	Score     int
	Signals   []string
	Strategy  string
}

// Result converts the verdict into the form stored on the report.
func (v Verdict) Result() report.TriageResult {
	return report.TriageResult{
		Emergency: v.Emergency,
		Strategy:  v.Strategy,
		Score:     v.Score,
		Signals:   v.Signals,
	}
}

type Analyzer interface {
	Analyze(ctx context.Context, img Image) Verdict
}

// FilenameAnalyzer flags an image whose original file name contains any keyword.
type FilenameAnalyzer struct {
	keywords []string
	logger   logger.Interface
}

func NewFilenameAnalyzer(keywords []string, log logger.Interface) *FilenameAnalyzer {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &FilenameAnalyzer{keywords: lowered, logger: log}
}

func (a *FilenameAnalyzer) Analyze(_ context.Context, img Image) Verdict {
	name := strings.ToLower(filepath.Base(img.Filename))
	v := Verdict{Strategy: StrategyFilename}
	for _, k := range a.keywords {
		if strings.Contains(name, k) {
			v.Signals = append(v.Signals, k)
		}
	}
	v.Score = len(v.Signals)
	v.Emergency = v.Score > 0
	a.logger.Debugw("filename triage finished", "filename", name, "emergency", v.Emergency, "signals", v.Signals)
	return v
}

// NoopAnalyzer never flags anything.
type NoopAnalyzer struct{}

func (NoopAnalyzer) Analyze(context.Context, Image) Verdict {
	return Verdict{Strategy: StrategyNone}
}

type timeoutAnalyzer struct {
	next    Analyzer
	timeout time.Duration
	logger  logger.Interface
}

// WithTimeout bounds next. When the deadline passes first the result is a
// non-emergency verdict; the inner call observes the cancelled context.
func WithTimeout(next Analyzer, timeout time.Duration, log logger.Interface) Analyzer {
	return &timeoutAnalyzer{next: next, timeout: timeout, logger: log}
}

func (a *timeoutAnalyzer) Analyze(ctx context.Context, img Image) Verdict {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan Verdict, 1)
	go func() {
		done <- a.next.Analyze(ctx, img)
	}()

	select {
	case v := <-done:
		return v
	case <-ctx.Done():
		a.logger.Warnw("image triage timed out", "timeout", a.timeout, "error", ctx.Err())
		return Verdict{Strategy: "timeout"}
	}
}
