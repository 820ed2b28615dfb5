package services

import (
	"fmt"

	"github.com/syncspace-dev/syncspace/internal/models"
	"gopkg.in/gomail.v2"
)

// Mailer delivers invitation email. Delivery is synchronous; a failure
// propagates to the caller with no retry.
type Mailer interface {
	SendInvitation(to, organizationName string, role models.OrganizationRole, inviteLink string) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a Mailer backed by the given SMTP server.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendInvitation sends the invitation deep link to the target address.
func (m *SMTPMailer) SendInvitation(to, organizationName string, role models.OrganizationRole, inviteLink string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, organizationName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("You're invited to join %s!", organizationName))
	msg.SetBody("text/html", fmt.Sprintf(`
		<h2>Join %s</h2>
		<p>You have been invited as <strong>%s</strong>.</p>
		<a href="%s" style="background:#2563eb;color:white;padding:10px 20px;text-decoration:none;border-radius:6px;">Accept Invitation</a>
	`, organizationName, role, inviteLink))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send invitation mail: %w", err)
	}

	return nil
}
