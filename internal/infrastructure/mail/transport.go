package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"
)

const dialTimeout = 10 * time.Second

// Config holds SMTP settings. From doubles as the login username.
type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (c Config) configured() bool {
	return c.Host != "" && c.From != ""
}

// Client is the subset of *smtp.Client used to deliver one message.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

var errSTARTTLSUnsupported = errors.New("smtp server does not support STARTTLS")

// dialSTARTTLS connects, upgrades with STARTTLS and authenticates.
func dialSTARTTLS(ctx context.Context, cfg Config) (Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		_ = client.Close()
		return nil, errSTARTTLSUnsupported
	}
	if err := client.StartTLS(&tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("start tls: %w", err)
	}

	if cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.From, cfg.Password, cfg.Host)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	return client, nil
}
