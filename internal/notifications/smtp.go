package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"lexsched/pkg/logger"
)

// SMTPNotifier sends mail via unauthenticated SMTP (Mailpit-compatible).
type SMTPNotifier struct {
	addr string
	from string
	log  *logger.Logger
}

func NewSMTPNotifier(host, port, from string, log *logger.Logger) *SMTPNotifier {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@lexsched.local"
	}
	return &SMTPNotifier{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
		log:  log,
	}
}

func (s *SMTPNotifier) Send(ctx context.Context, recipient string, n Notification) error {
	if recipient == "" {
		return fmt.Errorf("recipient address is empty")
	}

	content := n.Render()
	msg := buildMessage(s.from, recipient, content)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("send %s notification: %w", n.Kind(), err)
	}

	s.log.Info("Email sent successfully",
		"kind", n.Kind(),
		"subject", content.Subject,
	)
	return nil
}

const altBoundary = "lexsched-alt-boundary"

// buildMessage assembles a minimal RFC 5322 multipart/alternative message;
// enough for Mailpit and most SMTP relays.
func buildMessage(from, to string, c Content) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", c.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary)

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(c.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(c.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", altBoundary)
	return b.String()
}
