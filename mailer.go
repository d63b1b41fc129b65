package register

import (
	"context"
	"fmt"

	"github.com/goliatone/go-print"
)

// ActivationEmailSubject is the subject line used for activation mail
const ActivationEmailSubject = "Account activation"

// ActivationEmail is the payload handed to the Mailer for delivery
type ActivationEmail struct {
	To            string `json:"to"`
	FullName      string `json:"full_name"`
	ActivationURL string `json:"activation_url"`
	Code          string `json:"code"`
	Subject       string `json:"subject"`
}

// Mailer delivers activation codes to users. Implementations own the
// transport (SMTP, provider API, queue); a delivery error fails the
// enclosing operation.
type Mailer interface {
	SendActivationEmail(ctx context.Context, email ActivationEmail) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, email ActivationEmail) error

// SendActivationEmail implements Mailer.
func (f MailerFunc) SendActivationEmail(ctx context.Context, email ActivationEmail) error {
	if f == nil {
		return nil
	}
	return f(ctx, email)
}

// DevMailer prints outgoing mail to stdout. Use it for local
// development and examples, never in production.
type DevMailer struct{}

// SendActivationEmail implements Mailer.
func (DevMailer) SendActivationEmail(_ context.Context, email ActivationEmail) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Println(print.MaybePrettyJSON(email))
	return nil
}
