// Package notification fans a new-report event out to external sinks
// without ever blocking or failing the submission that triggered it.
package notification

import (
	"context"
	"time"

	"github.com/civicwatch/civicwatch/internal/shared/goroutine"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

const TypeReportCreated = "report.created"

// Payload is what every sink receives about a report.
type Payload struct {
	ReportID     uint
	TrackingCode string
	Type         string
	Severity     string
	Description  string
	Location     string
	Emergency    bool
	OccurredAt   time.Time
}

// Sink delivers a payload to one external system.
type Sink interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

// Notifier is the port the submission pipeline depends on.
type Notifier interface {
	Notify(p Payload)
}

// Gateway sends each payload to every sink on its own panic-safe goroutine
// with its own deadline. Errors are logged and dropped.
type Gateway struct {
	sinks   []Sink
	timeout time.Duration
	tracker *goroutine.Tracker
	logger  logger.Interface
}

func NewGateway(timeout time.Duration, log logger.Interface, sinks ...Sink) *Gateway {
	return &Gateway{
		sinks:   sinks,
		timeout: timeout,
		tracker: goroutine.NewTracker(log),
		logger:  log,
	}
}

func (g *Gateway) Notify(p Payload) {
	for _, s := range g.sinks {
		sink := s
		g.tracker.Go("notify:"+sink.Name(), func() {
			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			defer cancel()

			if err := sink.Send(ctx, p); err != nil {
				g.logger.Warnw("notification delivery failed",
					"sink", sink.Name(),
					"report_id", p.ReportID,
					"error", err,
				)
				return
			}
			g.logger.Debugw("notification delivered", "sink", sink.Name(), "report_id", p.ReportID)
		})
	}
}

// Wait blocks until in-flight deliveries finish. Used on shutdown.
func (g *Gateway) Wait() {
	g.tracker.Wait()
}
