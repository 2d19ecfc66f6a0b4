package core

import "net/mail"

type (
	// EmailMessage is a plain-text notification. The API only sends short
	// transactional notices (join-request approvals), no templated HTML.
	EmailMessage struct {
		To      []mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }
