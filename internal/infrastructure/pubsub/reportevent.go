package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
)

// DefaultReportChannel carries report.created events for dashboards and
// other instances.
const DefaultReportChannel = "civicwatch:reports"

// ReportEvent is the JSON message published for each new report.
type ReportEvent struct {
	Type         string `json:"type"`
	ReportID     uint   `json:"report_id"`
	TrackingCode string `json:"tracking_code"`
	IssueType    string `json:"issue_type"`
	Severity     string `json:"severity"`
	Location     string `json:"location"`
	Emergency    bool   `json:"emergency"`
	Timestamp    int64  `json:"timestamp"`
}

// ReportEventHandler is a callback function for handling report events
type ReportEventHandler func(ctx context.Context, event ReportEvent)

// RedisReportEventBus publishes report events as a notification sink and
// lets other processes subscribe to them.
type RedisReportEventBus struct {
	client  *redis.Client
	channel string
	logger  logger.Interface
}

func NewRedisReportEventBus(client *redis.Client, channel string, logger logger.Interface) *RedisReportEventBus {
	if channel == "" {
		channel = DefaultReportChannel
	}
	return &RedisReportEventBus{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (b *RedisReportEventBus) Name() string {
	return "redis-pubsub"
}

// Send implements notification.Sink.
func (b *RedisReportEventBus) Send(ctx context.Context, p notification.Payload) error {
	event := ReportEvent{
		Type:         notification.TypeReportCreated,
		ReportID:     p.ReportID,
		TrackingCode: p.TrackingCode,
		IssueType:    p.Type,
		Severity:     p.Severity,
		Location:     p.Location,
		Emergency:    p.Emergency,
		Timestamp:    p.OccurredAt.Unix(),
	}
	if p.OccurredAt.IsZero() {
		event.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("report event published",
		"channel", b.channel,
		"report_id", event.ReportID,
		"tracking_code", event.TrackingCode,
	)
	return nil
}

// Subscribe blocks, calling handler for every event until ctx is cancelled.
func (b *RedisReportEventBus) Subscribe(ctx context.Context, handler ReportEventHandler) error {
	ps := b.client.Subscribe(ctx, b.channel)
	defer ps.Close()

	// Wait for subscription confirmation
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to report events", "channel", b.channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("report event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("report event channel closed")
				return nil
			}

			var event ReportEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warnw("failed to unmarshal report event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}
			handler(ctx, event)
		}
	}
}
