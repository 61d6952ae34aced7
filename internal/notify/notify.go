// Package notify composes and dispatches corpus access-request messages to the
// configured administrator addresses.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corpushub/catalog/internal/domain"
	"github.com/rs/zerolog/log"
)

const subject = "Corpus access request"

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a single outgoing plain-text mail.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Notifier fans an access request out to every configured recipient. Each
// recipient is attempted independently.
type Notifier struct {
	sender     Sender
	from       string
	recipients []string
	now        func() time.Time
}

func New(sender Sender, from string, recipients []string) *Notifier {
	return &Notifier{sender: sender, from: from, recipients: recipients, now: time.Now}
}

// SendRequest delivers the request to all recipients and reports true when at
// least one delivery succeeded. Partial failure is logged, never raised.
func (n *Notifier) SendRequest(ctx context.Context, req domain.AccessRequest) bool {
	body := n.composeBody(req)
	var errs []string
	for _, rcpt := range n.recipients {
		err := n.sender.Send(ctx, Message{
			From:    n.from,
			To:      rcpt,
			ReplyTo: req.Email,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to send an e-mail to <%s>: %s", rcpt, err))
		}
	}
	switch {
	case len(errs) == 0:
		return true
	case len(errs) < len(n.recipients):
		log.Warn().Str("errors", strings.Join(errs, ", ")).Msg("errors sending corpus access request e-mail(s)")
		return true
	default:
		log.Warn().Str("errors", strings.Join(errs, ", ")).Msg("all corpus access request e-mails failed")
		return false
	}
}

func (n *Notifier) composeBody(req domain.AccessRequest) string {
	var b strings.Builder
	b.WriteString("Corpus access request submitted from the catalog:\n\n")
	fmt.Fprintf(&b, "date and time: %s\n", n.now().Format("02.01. 2006 15:04"))
	fmt.Fprintf(&b, "user: %s (ID = %d, e-mail: %s)\n", req.Username, req.UserID, req.Email)
	fmt.Fprintf(&b, "corpus ID: %s\n", req.CorpusID)
	if req.Message != "" {
		b.WriteString("\nAdditional message from the user:\n\n")
		b.WriteString(req.Message)
		b.WriteString("\n")
	}
	b.WriteString("\n---------------------\n")
	return b.String()
}
