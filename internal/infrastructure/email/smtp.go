package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/civicwatch/civicwatch/internal/application/report/notification"
	"github.com/civicwatch/civicwatch/internal/shared/biztime"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// AlertSink emails staff about high-severity or emergency reports. Other
// reports are skipped without error.
type AlertSink struct {
	config     SMTPConfig
	recipients []string
	send       func(m *gomail.Message) error
}

func NewAlertSink(config SMTPConfig, recipients []string) *AlertSink {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &AlertSink{
		config:     config,
		recipients: recipients,
		send:       func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

func (s *AlertSink) Name() string {
	return "email-alert"
}

func (s *AlertSink) Send(ctx context.Context, p notification.Payload) error {
	if !ShouldAlert(p) || len(s.recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.buildMessage(p)
	errCh := make(chan error, 1)
	go func() { errCh <- s.send(m) }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShouldAlert reports whether staff must be paged about p.
func ShouldAlert(p notification.Payload) bool {
	return p.Emergency || strings.EqualFold(p.Severity, "high")
}

func (s *AlertSink) buildMessage(p notification.Payload) *gomail.Message {
	label := "High priority"
	if p.Emergency {
		label = "Possible emergency"
	}
	subject := fmt.Sprintf("[CivicWatch] %s: %s in %s", label, p.Type, p.Location)
	when := biztime.FormatInBizTimezone(p.OccurredAt, "Jan 2, 2006 3:04 PM")

	plainBody := fmt.Sprintf(`%s report received.

Tracking code: %s
Issue type: %s
Location: %s
Submitted: %s

%s
`, label, p.TrackingCode, p.Type, p.Location, when, p.Description)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s report received</h2>
			<p><strong>Tracking code:</strong> %s</p>
			<p><strong>Issue type:</strong> %s</p>
			<p><strong>Location:</strong> %s</p>
			<p><strong>Submitted:</strong> %s</p>
			<p>%s</p>
		</body>
		</html>
	`, label,
		html.EscapeString(p.TrackingCode),
		html.EscapeString(p.Type),
		html.EscapeString(p.Location),
		when,
		html.EscapeString(p.Description))

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", s.recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)
	return m
}
