// Package mailer delivers the digest as a two-part message (plain text with
// an HTML alternative) over authenticated SMTP.
package mailer

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/deusflow/topicdigest/internal/retry"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one message to a single recipient. The send is all or
// nothing; transient dial failures are retried a few times before giving up.
func (m *Mailer) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	cfg := retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	if err := retry.WithRetry(ctx, cfg, func() error {
		return m.dialer.DialAndSend(msg)
	}); err != nil {
		return fmt.Errorf("send digest to %s: %w", to, err)
	}
	return nil
}
