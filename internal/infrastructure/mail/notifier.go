package mail

import (
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/api/metrics"
	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

// Notifier sends report-ready emails over SMTP.
type Notifier struct {
	cfg     Config
	log     zerolog.Logger
	connect func(ctx context.Context, cfg Config) (Client, error)
}

func NewNotifier(cfg Config, log zerolog.Logger) *Notifier {
	return &Notifier{cfg: cfg, log: log, connect: dialSTARTTLS}
}

// SendReportReady delivers the download link to the report owner. Every
// failure wraps domain.ErrNotification.
func (n *Notifier) SendReportReady(ctx context.Context, msg ports.ReportReadyNotification) error {
	if err := n.send(ctx, msg); err != nil {
		metrics.EmailNotificationsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("%w: %v", domain.ErrNotification, err)
	}
	metrics.EmailNotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

func (n *Notifier) send(ctx context.Context, msg ports.ReportReadyNotification) error {
	if !n.cfg.configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if msg.To == "" {
		return fmt.Errorf("recipient is empty")
	}

	client, err := n.connect(ctx, n.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to %s: %w", msg.To, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := wc.Write([]byte(buildMessage(n.cfg.From, msg))); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	if err := client.Quit(); err != nil {
		n.log.Debug().Err(err).Msg("smtp quit failed after delivery")
	}
	return nil
}

func subject(msg ports.ReportReadyNotification) string {
	return fmt.Sprintf("Weather Report for %s (ID: %d)", msg.City, msg.ReportID)
}

func body(msg ports.ReportReadyNotification) string {
	return fmt.Sprintf("Hello %s,\n\n"+
		"Your weather report for %s is ready.\n\n"+
		"Download link: %s\n\n"+
		"This report contains current weather conditions for %s.\n\n"+
		"The link will expire in 24 hours.\n\n"+
		"Thank you,\n"+
		"Weather Report Service",
		msg.Username, msg.City, msg.DownloadURL, msg.City)
}

func stripLineBreaks(v string) string {
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, v)
}

// headerValue drops line breaks and RFC 2047 encodes anything outside
// printable ASCII.
func headerValue(v string) string {
	return mime.QEncoding.Encode("utf-8", stripLineBreaks(v))
}

func buildMessage(from string, msg ports.ReportReadyNotification) string {
	msg.City = stripLineBreaks(msg.City)
	msg.Username = stripLineBreaks(msg.Username)
	text := strings.ReplaceAll(body(msg), "\n", "\r\n")
	return strings.Join([]string{
		"From: " + headerValue(from),
		"To: " + headerValue(msg.To),
		"Subject: " + headerValue(subject(msg)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		text,
	}, "\r\n")
}
